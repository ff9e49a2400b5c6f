package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Posting is a job description ready to be used for tailoring.
type Posting struct {
	Text      string    `json:"text"`
	URL       string    `json:"url,omitempty"`
	Platform  string    `json:"platform,omitempty"`
	Hash      string    `json:"hash"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NewPosting builds a Posting for text, hashing the text for deduplication.
func NewPosting(text, url string) *Posting {
	return &Posting{
		Text:      text,
		URL:       url,
		Hash:      computeHash(text),
		FetchedAt: time.Now().UTC(),
	}
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
