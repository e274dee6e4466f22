package biostate

import (
	"encoding/json"
	"fmt"
	"strings"
)

const storageVersion = 1

// FeedbackLogKey holds the append-only feedback log shared by all donors.
const FeedbackLogKey = "smartBioFeedback"

// HiddenCitationsKey is the per-donor key of permanently hidden citation URLs.
func HiddenCitationsKey(donorID string) string {
	return "hiddenCitations_" + donorID
}

type hiddenCitationsDoc struct {
	Version int      `json:"version"`
	URLs    []string `json:"urls"`
}

type feedbackLogDoc struct {
	Version int              `json:"version"`
	Records []FeedbackRecord `json:"records"`
}

// decodeHiddenURLs accepts the versioned document and the bare JSON array
// written by older clients.
func decodeHiddenURLs(raw []byte) ([]string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var urls []string
		if err := json.Unmarshal([]byte(trimmed), &urls); err != nil {
			return nil, fmt.Errorf("decode hidden citations: %w", err)
		}
		return urls, nil
	}

	var doc hiddenCitationsDoc
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		return nil, fmt.Errorf("decode hidden citations: %w", err)
	}
	if doc.Version > storageVersion {
		return nil, fmt.Errorf("decode hidden citations: unsupported version %d", doc.Version)
	}
	return doc.URLs, nil
}

func encodeHiddenURLs(urls []string) ([]byte, error) {
	if urls == nil {
		urls = []string{}
	}
	return json.Marshal(hiddenCitationsDoc{Version: storageVersion, URLs: urls})
}

func decodeFeedbackLog(raw []byte) ([]FeedbackRecord, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var records []FeedbackRecord
		if err := json.Unmarshal([]byte(trimmed), &records); err != nil {
			return nil, fmt.Errorf("decode feedback log: %w", err)
		}
		return records, nil
	}

	var doc feedbackLogDoc
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		return nil, fmt.Errorf("decode feedback log: %w", err)
	}
	if doc.Version > storageVersion {
		return nil, fmt.Errorf("decode feedback log: unsupported version %d", doc.Version)
	}
	return doc.Records, nil
}

func encodeFeedbackLog(records []FeedbackRecord) ([]byte, error) {
	return json.Marshal(feedbackLogDoc{Version: storageVersion, Records: records})
}
