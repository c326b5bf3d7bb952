package models

import (
	"time"

	"github.com/google/uuid"
)

// Address is one-to-one with User and keyed by its id.
type Address struct {
	UserID        uuid.UUID `db:"user_id" json:"user_id"`
	StreetAddress string    `db:"street_address" json:"street_address"`
	City          string    `db:"city" json:"city"`
	State         string    `db:"state" json:"state"`
	ZipCode       string    `db:"zip_code" json:"zip_code"`
	Country       string    `db:"country" json:"country"`
}

// UserProfile is one-to-one with User. DateOfBirth carries a date only.
type UserProfile struct {
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    string    `db:"last_name" json:"last_name"`
	DateOfBirth time.Time `db:"date_of_birth" json:"date_of_birth"`
	Bio         string    `db:"bio" json:"bio"`
	Hobbies     string    `db:"hobbies" json:"hobbies"`
}
