// Package model defines the persisted entities shared by the repository,
// service and handler layers.
//
// Structs here map 1:1 to database rows and double as API response
// bodies via their JSON tags. Sensitive columns (password hashes) are
// excluded from serialization. Status enums carry their transition rules
// next to the type so services don't scatter state logic.
package model
