// Package utils contains small helper functions used across the project.
//
// These are usually generic helpers that don't belong to a specific domain.
package utils

import (
	"encoding/json"
	"fmt"
)

// Ptr returns a pointer to v. Handy for the optional (nullable) fields on
// models and update payloads.
func Ptr[T any](v T) *T {
	return &v
}

// PrintJSON pretty-prints any Go value as indented JSON to stdout.
// Debugging helper only.
func PrintJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "	")
	if err != nil {
		fmt.Println("Error marshalling the JSON:", err)
		return
	}

	fmt.Println("JSON:", string(data))
}
