package dto

// SEOResult is the analyzer payload passed through as-is: the analyzer
// owns its response shape, this service only unwraps the envelope.
type SEOResult map[string]any

type AnalyzeSEORequest struct {
	Content string `json:"content" validate:"required"`
	Keyword string `json:"keyword"`
}

type AnalyzeBlogSEORequest struct {
	Title   string `json:"title" validate:"required"`
	Excerpt string `json:"excerpt"`
	Content string `json:"content" validate:"required"`
	Keyword string `json:"keyword"`
}

type AnalyzeSiteSEORequest struct {
	URL string `json:"url" validate:"required,url"`
}

type SuggestKeywordsRequest struct {
	Topic string `json:"topic" validate:"required"`
	Limit int    `json:"limit" validate:"omitempty,min=1,max=50"`
}
