package vision

import "context"

// ReviewBreakdown scores aspects of a product from aggregated reviews,
// each on a 0-100 scale.
type ReviewBreakdown struct {
	Quality    int `json:"quality"`
	Value      int `json:"value"`
	Durability int `json:"durability"`
}

// Identification is the structured product description extracted from an
// image. All text fields are localized to the language the identifier
// was asked for.
type Identification struct {
	ProductName     string          `json:"productName"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	Rating          float64         `json:"rating"`
	ReviewCount     int             `json:"reviewCount"`
	ReviewBreakdown ReviewBreakdown `json:"reviewBreakdown"`
	Pros            []string        `json:"pros"`
	Cons            []string        `json:"cons"`
	UsageTips       []string        `json:"usageTips"`
	Recommendation  string          `json:"recommendation"`
}

// Usage contains token usage and cost information for a model call.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	CostUSD      float64
}

// Identifier identifies products from images.
type Identifier interface {
	// Identify analyzes image data and returns a product description with
	// all text fields in the given language. Identification has no
	// fallback: a failed call or unparsable response is an error.
	Identify(ctx context.Context, imageData []byte, mimeType, language string) (*Identification, error)
}
