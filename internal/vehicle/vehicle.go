package vehicle

// Listing is a single vehicle record as reported by one source platform.
// Core identity and comparison fields are typed; anything extra a feed
// reports rides along in Extra untouched.
type Listing struct {
	ID           string   `json:"id,omitempty"`
	Make         string   `json:"make"`
	Model        string   `json:"model"`
	Year         int      `json:"year"`
	Variant      string   `json:"variant,omitempty"`
	Price        float64  `json:"price,omitempty"`
	KMsDriven    int      `json:"kms_driven,omitempty"`
	Location     string   `json:"location,omitempty"`
	FuelType     string   `json:"fuel_type,omitempty"`
	Transmission string   `json:"transmission,omitempty"`
	Source       string   `json:"source,omitempty"`
	Features     []string `json:"features,omitempty"`
	Description  string   `json:"description,omitempty"`
	ScrapedAt    string   `json:"scraped_at,omitempty"`
	ProcessedAt  string   `json:"processed_at,omitempty"`

	Extra map[string]any `json:"extra,omitempty"`
}

// MergedListing is the canonical record for one physical vehicle, folded
// from one or more raw listings cross-referenced across sources.
type MergedListing struct {
	Listing

	VehicleID        string             `json:"vehicle_id"`
	SourcePlatforms  []string           `json:"source_platforms"`
	PriceComparison  map[string]float64 `json:"price_comparison,omitempty"`
	BestPrice        float64            `json:"best_price,omitempty"`
	BestDealPlatform string             `json:"best_deal_platform,omitempty"`
	CrossReferenced  bool               `json:"cross_referenced"`
	DuplicateCount   int                `json:"duplicate_count"`
	Descriptions     []string           `json:"descriptions,omitempty"`

	ConditionScore float64 `json:"condition_score"`
	AgeYears       int     `json:"age_years"`
	PricePerKM     float64 `json:"price_per_km"`

	LastUpdated string `json:"last_updated,omitempty"`
}

// Preferences is the user-supplied side of a recommendation request.
// Zero values mean "no preference".
type Preferences struct {
	Budget       float64 `json:"budget,omitempty"`
	FuelType     string  `json:"fuel_type,omitempty"`
	Transmission string  `json:"transmission,omitempty"`
	Location     string  `json:"location,omitempty"`
	Brand        string  `json:"brand,omitempty"`
	Usage        string  `json:"usage,omitempty"`
	Priority     string  `json:"priority,omitempty"`
}

// Recommendation is a merged listing scored and explained against a set of
// preferences.
type Recommendation struct {
	MergedListing

	RecommendationScore   float64  `json:"recommendation_score"`
	RecommendationReasons []string `json:"recommendation_reasons"`
}

// Filters narrows a processed dataset; nil/zero fields are ignored.
type Filters struct {
	Make         string  `json:"make,omitempty"`
	Model        string  `json:"model,omitempty"`
	YearMin      int     `json:"year_min,omitempty"`
	YearMax      int     `json:"year_max,omitempty"`
	PriceMin     float64 `json:"price_min,omitempty"`
	PriceMax     float64 `json:"price_max,omitempty"`
	FuelType     string  `json:"fuel_type,omitempty"`
	Transmission string  `json:"transmission,omitempty"`
	Location     string  `json:"location,omitempty"`
}

// PriceAnomaly flags one platform price deviating too far from a merged
// listing's mean price.
type PriceAnomaly struct {
	VehicleID        string  `json:"vehicle_id"`
	MakeModel        string  `json:"make_model"`
	Platform         string  `json:"platform"`
	Price            float64 `json:"price"`
	AveragePrice     float64 `json:"average_price"`
	DeviationPercent float64 `json:"deviation_percent"`
}

// ValidationDetails holds the three sub-scores behind the overall data
// quality score.
type ValidationDetails struct {
	DuplicateDetectionAccuracy float64 `json:"duplicate_detection_accuracy"`
	PriceConsistency           float64 `json:"price_consistency"`
	DataCompleteness           float64 `json:"data_completeness"`
}

// ValidationReport audits a processed dataset for cross-referencing quality.
type ValidationReport struct {
	TotalVehicles        int               `json:"total_vehicles"`
	CrossReferencedCount int               `json:"cross_referenced_count"`
	SingleSourceCount    int               `json:"single_source_count"`
	MultiSourceCount     int               `json:"multi_source_count"`
	PriceAnomalies       []PriceAnomaly    `json:"price_anomalies"`
	DataQualityScore     float64           `json:"data_quality_score"`
	ValidationDetails    ValidationDetails `json:"validation_details"`
}

// PriceStats summarizes asking prices across a dataset.
type PriceStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Avg    float64 `json:"avg"`
	Median float64 `json:"median"`
}

// YearRange is the min/max model year seen in a dataset.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Statistics is the aggregate view over a processed dataset.
type Statistics struct {
	TotalVehicles     int            `json:"total_vehicles"`
	ByMake            map[string]int `json:"by_make"`
	ByFuelType        map[string]int `json:"by_fuel_type"`
	PriceStats        PriceStats     `json:"price_stats"`
	YearRange         YearRange      `json:"year_range"`
	ConditionScoreAvg float64        `json:"condition_score_avg"`
}
