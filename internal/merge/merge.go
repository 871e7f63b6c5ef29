// Package merge collapses duplicate listings scraped from different
// platforms into canonical merged records.
package merge

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/yourorg/vehicle-api/internal/match"
	"github.com/yourorg/vehicle-api/internal/vehicle"
)

// DefaultThreshold is the similarity cutoff for treating two listings as the
// same vehicle.
const DefaultThreshold = 0.8

type Merger struct {
	threshold float64
}

// New returns a merger using the given similarity threshold; values <= 0
// fall back to DefaultThreshold.
func New(threshold float64) *Merger {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Merger{threshold: threshold}
}

// Merge partitions listings into clusters of likely-identical vehicles and
// folds each cluster into one MergedListing. Clustering is a single greedy
// pass in input order: each unassigned listing seeds a cluster and absorbs
// every later unassigned listing similar enough to the seed. Similarity is
// measured against the seed only, not transitively against cluster members;
// that keeps the pass deterministic for a fixed input order.
func (m *Merger) Merge(listings []vehicle.Listing) []vehicle.MergedListing {
	out := make([]vehicle.MergedListing, 0, len(listings))
	for _, group := range m.cluster(listings) {
		out = append(out, fold(group))
	}
	return out
}

func (m *Merger) cluster(listings []vehicle.Listing) [][]vehicle.Listing {
	var groups [][]vehicle.Listing
	assigned := make([]bool, len(listings))
	for i, seed := range listings {
		if assigned[i] {
			continue
		}
		group := []vehicle.Listing{seed}
		assigned[i] = true
		for j := i + 1; j < len(listings); j++ {
			if assigned[j] {
				continue
			}
			if match.Similarity(seed, listings[j]) >= m.threshold {
				group = append(group, listings[j])
				assigned[j] = true
			}
		}
		groups = append(groups, group)
	}
	return groups
}

// fold merges one cluster. Every cluster contains at least its seed.
func fold(group []vehicle.Listing) vehicle.MergedListing {
	base := group[0]

	sourceSet := make(map[string]struct{})
	prices := make(map[string]float64)
	var features []string
	seenFeature := make(map[string]struct{})
	var descriptions []string
	seenDesc := make(map[string]struct{})
	var kmSum, kmCount int

	for _, l := range group {
		source := l.Source
		if source == "" {
			source = "unknown"
		}
		sourceSet[source] = struct{}{}
		if l.Price > 0 {
			prices[source] = l.Price
		}
		if l.KMsDriven > 0 {
			kmSum += l.KMsDriven
			kmCount++
		}
		for _, f := range l.Features {
			if _, ok := seenFeature[f]; ok {
				continue
			}
			seenFeature[f] = struct{}{}
			features = append(features, f)
		}
		if l.Description != "" {
			if _, ok := seenDesc[l.Description]; !ok {
				seenDesc[l.Description] = struct{}{}
				descriptions = append(descriptions, l.Description)
			}
		}
	}

	sources := make([]string, 0, len(sourceSet))
	for s := range sourceSet {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	merged := vehicle.MergedListing{
		Listing:         base,
		VehicleID:       vehicleID(base.Make, base.Model, base.Year, sources),
		SourcePlatforms: sources,
		DuplicateCount:  len(group),
	}

	if len(prices) > 0 {
		merged.PriceComparison = prices
		merged.BestPrice, merged.BestDealPlatform = bestPrice(prices)
	}

	if len(group) == 1 {
		return merged
	}

	merged.CrossReferenced = true
	merged.Features = features
	merged.Descriptions = descriptions
	if kmCount > 0 {
		merged.KMsDriven = int(math.Round(float64(kmSum) / float64(kmCount)))
	}
	merged.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	return merged
}

// bestPrice returns the minimum price and its platform. Platforms are
// visited in sorted order so ties break deterministically.
func bestPrice(prices map[string]float64) (float64, string) {
	platforms := make([]string, 0, len(prices))
	for p := range prices {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)

	best := math.Inf(1)
	var bestPlatform string
	for _, p := range platforms {
		if prices[p] < best {
			best = prices[p]
			bestPlatform = p
		}
	}
	return best, bestPlatform
}

// vehicleID derives a stable identifier from identity fields plus a hash of
// the sorted source set, so re-merging the same cluster yields the same ID.
func vehicleID(brand, model string, year int, sortedSources []string) string {
	sum := sha256.Sum256([]byte(strings.Join(sortedSources, "|")))
	return fmt.Sprintf("%s_%s_%d_%s", slug(brand), slug(model), year, hex.EncodeToString(sum[:])[:12])
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}
