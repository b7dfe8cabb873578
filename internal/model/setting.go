package model

import "time"

// Setting is an admin-editable key/value row. Value is raw JSON so numeric
// and structured settings share one table. The key catalogue and defaults
// live in the settings service.
type Setting struct {
	Key       string    `json:"key"`
	Value     []byte    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
