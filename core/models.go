package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ContentHash is a 64-bit fingerprint of an embedding document.
// It is used to detect records whose content changed since they were indexed.
type ContentHash uint64

// HashContent generates a deterministic hash from text content using BLAKE2b.
// Identical content always produces an identical hash.
func HashContent(text string) ContentHash {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ContentHash(binary.LittleEndian.Uint64(sum))
}

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser represents the human end of the conversation.
	RoleUser Role = "user"
	// RoleAssistant represents the assistant end of the conversation.
	RoleAssistant Role = "assistant"
	// RoleSystem represents system-injected instructions.
	RoleSystem Role = "system"
)

// ConversationMessage is a single turn in a conversation.
type ConversationMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// LocationRecord is one catalog entry in its formatted, response-ready form.
// All text fields default to the empty string, never to a null value, and
// list fields are split from the comma-joined source columns.
type LocationRecord struct {
	Id                   string   `json:"id"`
	Title                string   `json:"title"`
	Link                 string   `json:"link"`
	Address              string   `json:"address"`
	Images               []string `json:"images"`
	Content              string   `json:"content"`
	Summary              string   `json:"content_shorter_version"`
	Area                 string   `json:"location_area"`
	Category             string   `json:"category_type"`
	ThemeHighlights      []string `json:"theme_highlights"`
	PriceRange           string   `json:"price_range"`
	AudienceSuitability  []string `json:"audience_suitability"`
	OperatingHours       string   `json:"operating_hours"`
	AdditionalAttributes []string `json:"additional_attributes"`
}

// IndexEntry is the persisted unit of the semantic index: one embedded
// catalog document with the metadata needed to format responses.
type IndexEntry struct {
	Id         string
	Document   string
	Vector     []float32
	Metadata   map[string]string
	Hash       ContentHash // Hash of Document at insertion time
	InsertedAt time.Time
}

// Neighbor is a single nearest-neighbor match from the semantic index.
// Distance is a cosine distance: 0 means identical direction, up to 2
// for opposite vectors.
type Neighbor struct {
	Id       string
	Distance float32
	Metadata map[string]string
}

// RetrievedLocation is one ranked retrieval result. Score lives in a
// similarity space derived from cosine distance (score = 1 - distance),
// so it ranges roughly [-1, 1] with higher meaning more similar.
type RetrievedLocation struct {
	Id    string  `json:"id"`
	Score float64 `json:"score"`
	Title string  `json:"title"`
}

// PipelineResult is the externally observable output of one conversation
// pipeline invocation.
type PipelineResult struct {
	RetrievedLocations []RetrievedLocation `json:"retrieved_locations"`
	ClarifyingQuestion string              `json:"clarifying_question"`
}
