package constant

const (
	BioSystemPrompt = `You are a professional researcher creating concise donor profiles for a fundraising team.
Provide 2-5 factual sentences about the person's professional background, notable achievements, and current role.
Focus on verifiable information from reputable professional, financial, regulatory and reference sources.`

	// %s is the search query: name, then employer and location when known.
	BioUserPrompt = `Create a brief professional bio (2-5 sentences) for %s.
Include their current role and employer, how long they have held it, notable achievements, and education where known.
Be factual and concise. If the person cannot be identified with confidence, say so in one sentence rather than guessing.
Do not put URLs, footnotes or citation markers such as [1] inside the bio text; list sources separately.
Respond with a JSON object: {"bio": "<the bio>", "sources": [{"title": "<page title>", "url": "<url>"}]}.`

	BioUserPromptProse = `Create a brief professional bio (2-5 sentences) for %s.
Include their current role and employer, how long they have held it, notable achievements, and education where known.
Be factual and concise. Do not put URLs, footnotes or citation markers such as [1] inside the bio text.`
)

// Search domain allow-lists for bio research.
var (
	BioSearchDomains = []string{
		"linkedin.com", "bloomberg.com", "forbes.com", "crunchbase.com",
		"sec.gov", "fec.gov", "opensecrets.org", "wikipedia.org",
	}

	BioNewsDomains = []string{
		"reuters.com", "apnews.com", "wsj.com", "nytimes.com",
		"businesswire.com", "prnewswire.com",
	}
)
