package models

import "encoding/json"

// Question is one prompt from the quiz catalog attached to a pending
// message. Options is raw JSON because its shape varies per category.
type Question struct {
	ID       int64           `json:"id"`
	Category string          `json:"category"`
	Title    string          `json:"title"`
	Content  string          `json:"content"`
	Options  json.RawMessage `json:"options,omitempty"`
}
