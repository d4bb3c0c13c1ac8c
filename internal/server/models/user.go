// Package models defines server-side data models persisted in the database.
package models

import "time"

// UserID identifies the owner of a row. It is a distinct type so a task or
// event id can never be passed where an owner is expected.
type UserID string

func (id UserID) String() string { return string(id) }

type User struct {
	ID           UserID
	UserName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
