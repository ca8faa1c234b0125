// Package models holds the persistent entities of the authentication store.
package models

import "time"

// User is an account row. Hash is the composite credential artifact
// produced by the password hasher (derived key and salt, both base64,
// joined by a dot). Deleted users stay in the table but are excluded
// from every lookup.
type User struct {
	ID        string
	Email     string
	Name      string
	Hash      string
	Verified  bool
	Deleted   bool
	CreatedAt time.Time
}
