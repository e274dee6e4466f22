package factory

import (
	"crimson-crm-be/pkg/llm"
	"crimson-crm-be/pkg/llm/perplexity"
	"fmt"
	"time"
)

func NewSearchProvider(providerType, modelName, apiKey, baseURL string, timeout time.Duration) (llm.SearchProvider, error) {
	switch providerType {
	case "perplexity", "":
		if baseURL == "" {
			baseURL = perplexity.DefaultBaseURL
		}
		return perplexity.NewPerplexityProvider(apiKey, baseURL, modelName, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
