package feed

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/yourorg/vehicle-api/internal/vehicle"
)

// flexNumber accepts string or number JSON; scraper feeds are inconsistent
// about which they emit.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	if string(b) == "null" || string(b) == `""` {
		*n = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = flexNumber(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = flexNumber(v)
	return nil
}

// MapPayloadToListings maps a feed page payload to raw listings. Field names
// vary slightly across scraper deployments, so the mapping is deliberately
// tolerant: kms_driven falls back to km, id to listing_id.
func MapPayloadToListings(raw []byte) ([]vehicle.Listing, error) {
	type fListing struct {
		ID           string     `json:"id"`
		ListingID    string     `json:"listing_id"`
		Make         string     `json:"make"`
		Model        string     `json:"model"`
		Year         flexNumber `json:"year"`
		Variant      string     `json:"variant"`
		Price        flexNumber `json:"price"`
		BestPrice    flexNumber `json:"best_price"`
		KMsDriven    flexNumber `json:"kms_driven"`
		KM           flexNumber `json:"km"`
		Location     string     `json:"location"`
		FuelType     string     `json:"fuel_type"`
		Transmission string     `json:"transmission"`
		Source       string     `json:"source"`
		Features     []string   `json:"features"`
		Description  string     `json:"description"`
		ScrapedAt    string     `json:"scraped_at"`

		Extra map[string]any `json:"extra"`
	}
	var root struct {
		Listings []fListing `json:"listings"`
		Vehicles []fListing `json:"vehicles"` // older feed deployments
	}
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, err
	}
	items := root.Listings
	if len(items) == 0 {
		items = root.Vehicles
	}

	out := make([]vehicle.Listing, 0, len(items))
	for _, f := range items {
		price := float64(f.Price)
		if price == 0 {
			price = float64(f.BestPrice)
		}
		kms := float64(f.KMsDriven)
		if kms == 0 {
			kms = float64(f.KM)
		}
		out = append(out, vehicle.Listing{
			ID:           nonEmpty(f.ID, f.ListingID),
			Make:         f.Make,
			Model:        f.Model,
			Year:         int(f.Year),
			Variant:      f.Variant,
			Price:        price,
			KMsDriven:    int(kms),
			Location:     f.Location,
			FuelType:     f.FuelType,
			Transmission: f.Transmission,
			Source:       f.Source,
			Features:     f.Features,
			Description:  f.Description,
			ScrapedAt:    f.ScrapedAt,
			Extra:        f.Extra,
		})
	}
	return out, nil
}

// MapSourcesPayload extracts source platform names from a /api/sources
// response.
func MapSourcesPayload(raw []byte) ([]string, error) {
	var root struct {
		Sources []string `json:"sources"`
	}
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, err
	}
	return root.Sources, nil
}

func nonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
