package domain

import "errors"

// Customer is an identity record. Email is unique across the store.
type Customer struct {
	ID      string
	Email   string
	Name    string
	Phone   string
	Address string
}

var (
	ErrNotFound      = errors.New("customer not found")
	ErrEmailTaken    = errors.New("email already in use")
	ErrEmailRequired = errors.New("email is required")
)
