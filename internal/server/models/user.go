// Package models holds the domain structs and the static lookup tables
// (entry types, relationship types, default metadata) shared by the
// repositories, services and HTTP layer.
package models

import "time"

// User is an account owning zero or more worlds. Emails are stored
// lowercased and are unique case-insensitively.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"displayName"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
