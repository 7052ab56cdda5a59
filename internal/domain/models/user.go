package models

import (
	"github.com/google/uuid"
)

// User is the acting principal resolved by the identity provider.
type User struct {
	ID    uuid.UUID `db:"id" json:"id"`
	Name  string    `db:"name" json:"name"`
	Email string    `db:"email" json:"email"`
}
