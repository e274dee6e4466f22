package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crimson-crm-be/internal/constant"
	"crimson-crm-be/internal/dto"
	"crimson-crm-be/internal/pkg/logger"
	"crimson-crm-be/pkg/bio"
	"crimson-crm-be/pkg/llm"
	"crimson-crm-be/pkg/llm/perplexity"
)

// ErrNameRequired is the only error GenerateBio returns.
var ErrNameRequired = errors.New("name is required")

// IBioService produces a donor bio. Upstream failures never surface as errors:
// they degrade to mock or fallback content tagged through BioResult.Model.
type IBioService interface {
	GenerateBio(ctx context.Context, req *dto.BioRequest) (*dto.BioResult, error)
}

type BioServiceConfig struct {
	APIKey           string
	Model            string
	Timeout          time.Duration
	SearchDomains    []string
	RecencyFilter    string
	StructuredOutput bool
}

type bioService struct {
	provider llm.SearchProvider
	cfg      BioServiceConfig
	logger   logger.ILogger
}

func NewBioService(provider llm.SearchProvider, cfg BioServiceConfig, log logger.ILogger) IBioService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = perplexity.DefaultTimeout
	}
	if cfg.Model == "" {
		cfg.Model = perplexity.DefaultModel
	}
	if cfg.SearchDomains == nil {
		cfg.SearchDomains = constant.BioSearchDomains
	}
	return &bioService{
		provider: provider,
		cfg:      cfg,
		logger:   log,
	}
}

func (s *bioService) GenerateBio(ctx context.Context, req *dto.BioRequest) (*dto.BioResult, error) {
	r := normalizeBioRequest(req)
	if r.Name == "" {
		return nil, ErrNameRequired
	}

	s.logger.Info("BioService", "Generating bio", map[string]interface{}{
		"name":          r.Name,
		"has_key":       strings.TrimSpace(s.cfg.APIKey) != "",
		"testing_mode":  r.TestingMode,
		"search_scoped": r.UseSearchResults == nil || *r.UseSearchResults,
	})

	switch r.TestingMode {
	case "mock":
		return mockResult(r), nil
	case "fallback":
		return fallbackResult(r), nil
	}

	if s.provider == nil || perplexity.IsPlaceholderKey(s.cfg.APIKey) {
		s.logger.Warn("BioService", "Placeholder API key, returning mock data", nil)
		return mockResult(r), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	completion, err := s.search(ctx, r)
	if err != nil {
		s.logger.Error("BioService", "Bio search failed, using fallback", map[string]interface{}{
			"name":        r.Name,
			"error":       err,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return fallbackResult(r), nil
	}

	result, ok := s.processCompletion(completion)
	if !ok {
		s.logger.Warn("BioService", "Bio search returned no usable text, using fallback", map[string]interface{}{
			"name": r.Name,
		})
		return fallbackResult(r), nil
	}

	s.logger.Info("BioService", "Bio generated", map[string]interface{}{
		"name":        r.Name,
		"sentences":   len(result.Headlines),
		"citations":   len(result.Citations),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return result, nil
}

// search makes the single upstream attempt. Panics are turned into errors so
// they take the fallback path like any other failure.
func (s *bioService) search(ctx context.Context, r dto.BioRequest) (completion *llm.Completion, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("bio search panicked: %v", rec)
		}
	}()

	userPrompt := constant.BioUserPromptProse
	if s.cfg.StructuredOutput {
		userPrompt = constant.BioUserPrompt
	}

	history := []llm.Message{
		{Role: "system", Content: constant.BioSystemPrompt},
		{Role: "user", Content: fmt.Sprintf(userPrompt, searchQuery(r))},
	}

	opts := []llm.Option{
		llm.WithModel(s.cfg.Model),
		llm.WithTemperature(0.2),
		llm.WithMaxTokens(1000),
		llm.WithTopP(0.9),
		llm.WithFrequencyPenalty(1),
		llm.WithRecency(s.cfg.RecencyFilter),
	}
	if r.UseSearchResults == nil || *r.UseSearchResults {
		opts = append(opts, llm.WithSearchDomains(s.cfg.SearchDomains...))
	}
	if s.cfg.StructuredOutput {
		opts = append(opts, llm.WithResponseSchema(bio.Schema()))
	}

	return s.provider.Search(ctx, history, opts...)
}

func (s *bioService) processCompletion(c *llm.Completion) (*dto.BioResult, bool) {
	if c == nil {
		return nil, false
	}

	text := c.Content
	var sources []bio.Source
	if structured, ok := bio.ParseStructured(c.Content); ok {
		text = structured.Bio
		sources = structured.Sources
	} else if s.cfg.StructuredOutput && bio.LooksStructured(c.Content) {
		// Truncated or empty JSON must never reach the UI as prose.
		return nil, false
	}

	headlines := bio.SplitSentences(text)
	if len(headlines) == 0 {
		return nil, false
	}

	if len(sources) == 0 {
		sources = searchResultSources(c.SearchResults)
	}
	if len(sources) == 0 {
		sources = bio.SourcesFromURLs(c.Citations)
	}

	citations := make([]dto.Citation, 0, len(sources))
	for _, src := range sources {
		citations = append(citations, dto.Citation{Title: src.Title, URL: src.URL})
	}

	model := s.cfg.Model
	if model == "" {
		model = c.Model
	}

	return &dto.BioResult{
		Success:   true,
		Headlines: headlines,
		Citations: citations,
		Model:     model,
	}, true
}

func searchResultSources(results []llm.SearchResult) []bio.Source {
	sources := make([]bio.Source, 0, len(results))
	for _, r := range results {
		if strings.TrimSpace(r.URL) == "" {
			continue
		}
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = bio.TitleFromURL(r.URL)
		}
		sources = append(sources, bio.Source{Title: title, URL: r.URL})
	}
	return sources
}

func normalizeBioRequest(req *dto.BioRequest) dto.BioRequest {
	if req == nil {
		return dto.BioRequest{}
	}
	return dto.BioRequest{
		Name:             strings.TrimSpace(req.Name),
		Occupation:       strings.TrimSpace(req.Occupation),
		Employer:         strings.TrimSpace(req.Employer),
		Location:         strings.TrimSpace(req.Location),
		Email:            strings.TrimSpace(req.Email),
		Industry:         strings.TrimSpace(req.Industry),
		UseSearchResults: req.UseSearchResults,
		TestingMode:      strings.ToLower(strings.TrimSpace(req.TestingMode)),
	}
}

func searchQuery(r dto.BioRequest) string {
	parts := []string{r.Name}
	if r.Employer != "" {
		parts = append(parts, r.Employer)
	}
	if r.Location != "" {
		parts = append(parts, r.Location)
	}
	return strings.Join(parts, " ")
}

// mockResult stands in for the live search when no real credential is configured.
func mockResult(r dto.BioRequest) *dto.BioResult {
	location := r.Location
	if location == "" {
		location = "the United States"
	}
	affiliation := "Has an established career in their field."
	if r.Employer != "" {
		affiliation = fmt.Sprintf("Currently affiliated with %s.", r.Employer)
	}

	return &dto.BioResult{
		Success: true,
		Headlines: []string{
			fmt.Sprintf("%s is a professional based in %s.", r.Name, location),
			affiliation,
			"Known for contributions to their industry and community.",
		},
		Citations: []dto.Citation{{Title: "Public Records", URL: "https://example.com"}},
		Model:     dto.ModelMockData,
	}
}

// fallbackResult is built only from the request fields, with no network dependency.
func fallbackResult(r dto.BioRequest) *dto.BioResult {
	var headlines []string

	switch {
	case r.Occupation != "" && r.Employer != "":
		headlines = append(headlines, fmt.Sprintf("%s serves as %s at %s.", r.Name, r.Occupation, r.Employer))
	case r.Employer != "":
		headlines = append(headlines, fmt.Sprintf("%s is affiliated with %s.", r.Name, r.Employer))
	default:
		headlines = append(headlines, fmt.Sprintf("%s is a professional in their field.", r.Name))
	}

	if r.Industry != "" {
		headlines = append(headlines, fmt.Sprintf("Professional with experience in %s.", r.Industry))
	}
	if r.Location != "" {
		headlines = append(headlines, fmt.Sprintf("Based in %s with established career background.", r.Location))
	}

	return &dto.BioResult{
		Success:   true,
		Headlines: headlines,
		Citations: []dto.Citation{{Title: "Employment Information", URL: "#"}},
		Model:     dto.ModelFallback,
	}
}
