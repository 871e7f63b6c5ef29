// Package pipeline runs the full processing pass over a batch of raw
// listings: normalize, cross-reference/merge, then condition-score.
package pipeline

import (
	"log"

	"github.com/yourorg/vehicle-api/internal/canon"
	"github.com/yourorg/vehicle-api/internal/condition"
	"github.com/yourorg/vehicle-api/internal/merge"
	"github.com/yourorg/vehicle-api/internal/vehicle"
)

type Processor struct {
	Normalizer *canon.Normalizer
	Merger     *merge.Merger
	Scorer     *condition.Scorer
	Logger     *log.Logger
}

// New wires a processor with default vocabulary, threshold and clock.
func New() *Processor {
	return &Processor{
		Normalizer: canon.Default,
		Merger:     merge.New(merge.DefaultThreshold),
		Scorer:     condition.New(0),
	}
}

func (p *Processor) logf(format string, args ...any) {
	if p.Logger != nil {
		p.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// Process runs the whole pass. It never mutates its input and treats an
// empty batch as a valid degenerate case.
func (p *Processor) Process(listings []vehicle.Listing) []vehicle.MergedListing {
	if len(listings) == 0 {
		return []vehicle.MergedListing{}
	}
	normalized := p.Normalizer.NormalizeAll(listings)
	merged := p.Merger.Merge(normalized)
	enhanced := p.Scorer.EnhanceAll(merged)
	p.logf("[INFO] processed %d raw listings into %d unique vehicles", len(listings), len(enhanced))
	return enhanced
}
