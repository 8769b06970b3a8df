// Package model defines domain entities for the application.
package model

import "time"

// User is the local account mapped to one external identity provider subject.
type User struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"externalId"`
	FirstName  string    `json:"firstName,omitempty"`
	LastName   string    `json:"lastName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Profile carries the optional name fields supplied by the identity provider.
// They are only written when the user row is first created.
type Profile struct {
	FirstName string
	LastName  string
}
