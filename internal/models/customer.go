package models

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID             uuid.UUID `json:"id" db:"id"`
	CompanyName    string    `json:"company_name" db:"company_name"`
	Identification string    `json:"identification" db:"identification"`
	Address        string    `json:"address" db:"address"`
	Phone          *string   `json:"phone" db:"phone"`
	Email          string    `json:"email" db:"email"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
