package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. Credits gate chapter generation.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Credits      int       `json:"credits" db:"credits"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// CreditEntry is one row of the credit ledger.
type CreditEntry struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"userId" db:"user_id"`
	Amount      int        `json:"amount" db:"amount"`
	Kind        string     `json:"type" db:"kind"`
	Description string     `json:"description" db:"description"`
	StoryID     *uuid.UUID `json:"storyId,omitempty" db:"story_id"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}

// Credit ledger entry kinds.
const (
	CreditSpent   = "SPENT"
	CreditGranted = "GRANTED"
)
