package domain

// Category is a named, colored product grouping used for sample data
type Category struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DefaultCategories is the fixed rotation used when imported data has no category column
var DefaultCategories = []Category{
	{Name: "Electronics", Color: "#3b82f6"},
	{Name: "Clothing", Color: "#ef4444"},
	{Name: "Home & Kitchen", Color: "#10b981"},
	{Name: "Toys & Games", Color: "#f59e0b"},
	{Name: "Beauty", Color: "#8b5cf6"},
}

// CategoryData groups the series of one category
type CategoryData struct {
	Name  string      `json:"name"`
	Color string      `json:"color"`
	Data  []DataPoint `json:"data"`
}

// Factors tunes the seasonal-trend projection.
// For the generator they are fractions (0.2 = 20%), for the back-test percentages.
type Factors struct {
	Seasonality float64 `json:"seasonality" yaml:"seasonality" validate:"min=0,max=100"`
	Trend       float64 `json:"trend" yaml:"trend" validate:"min=-100,max=100"`
	Noise       float64 `json:"noise" yaml:"noise" validate:"min=0,max=100"`
}

// DefaultFactors returns the generator defaults
func DefaultFactors() Factors {
	return Factors{
		Seasonality: 0.2,
		Trend:       0.05,
		Noise:       0.1,
	}
}

// DefaultTestFactors returns the back-test defaults, in percent
func DefaultTestFactors() Factors {
	return Factors{
		Seasonality: 10,
		Trend:       5,
		Noise:       5,
	}
}

// AccuracyResult holds back-test error metrics
type AccuracyResult struct {
	MAPE     float64 `json:"mape"`
	RMSE     float64 `json:"rmse"`
	Accuracy float64 `json:"accuracy"`
}

// FactorOverrides carries optionally supplied factors from a request
type FactorOverrides struct {
	Seasonality *float64 `json:"seasonality,omitempty" validate:"omitempty,min=0,max=100"`
	Trend       *float64 `json:"trend,omitempty" validate:"omitempty,min=-100,max=100"`
	Noise       *float64 `json:"noise,omitempty" validate:"omitempty,min=0,max=100"`
}

// WithDefaults fills every unset factor from defaults. A nil receiver yields defaults.
func (o *FactorOverrides) WithDefaults(defaults Factors) Factors {
	if o == nil {
		return defaults
	}
	f := defaults
	if o.Seasonality != nil {
		f.Seasonality = *o.Seasonality
	}
	if o.Trend != nil {
		f.Trend = *o.Trend
	}
	if o.Noise != nil {
		f.Noise = *o.Noise
	}
	return f
}
