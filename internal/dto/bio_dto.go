package dto

// BioRequest is the body of POST /api/generate-bio.
type BioRequest struct {
	Name       string `json:"name" validate:"notblank"`
	Occupation string `json:"occupation,omitempty"`
	Employer   string `json:"employer,omitempty"`
	Location   string `json:"location,omitempty"`
	Email      string `json:"email,omitempty"`
	Industry   string `json:"industry,omitempty"`

	// UseSearchResults=false lifts the search domain allow-list.
	UseSearchResults *bool `json:"useSearchResults,omitempty"`
	// TestingMode "mock" or "fallback" forces that path without calling out.
	TestingMode string `json:"testingMode,omitempty"`
}

type Citation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Provenance tags carried in BioResult.Model.
const (
	ModelMockData = "mock-data"
	ModelFallback = "fallback"
)

// BioResult is always returned with HTTP 200; Model tells where the text came from.
type BioResult struct {
	Success   bool       `json:"success"`
	Headlines []string   `json:"headlines"`
	Citations []Citation `json:"citations"`
	Model     string     `json:"model"`
}

type BioErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
