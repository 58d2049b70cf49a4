package model

import "time"

// User is a library patron. Reservations reference users by ID only;
// use the reservation queries to walk from a user to its reservations.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone_number"`
	CreatedAt time.Time `json:"created_at"`
}

// UserReq is the create/update payload for users.
type UserReq struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email,max=150"`
	Phone string `json:"phone_number" validate:"omitempty,max=30"`
}
