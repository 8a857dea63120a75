// Package storage persists processed orders for history lookups.
package storage

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Order is one processed utterance with its priced outcome. Ticket holds the
// composed ticket record as JSON so history replays the exact artifact the
// customer saw.
type Order struct {
	ID            uuid.UUID       `json:"id"`
	Utterance     string          `json:"utterance"`
	Intent        string          `json:"intent"`
	Subtotal      float64         `json:"subtotal"`
	Discount      float64         `json:"discount"`
	Total         float64         `json:"total"`
	DistinctItems int             `json:"distinct_items"`
	TotalUnits    float64         `json:"total_units"`
	Ticket        json.RawMessage `json:"ticket"`
	CreatedAt     time.Time       `json:"created_at"`
}
