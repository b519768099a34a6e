package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken is returned when creating a user with an email that is
// already registered.
var ErrEmailTaken = errors.New("email already registered")

// ErrInsufficientStock is returned when a sale would decrement an item's
// quantity below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrNegativeQuantity is returned when a quantity mutation would leave or
// set a negative stock count.
var ErrNegativeQuantity = errors.New("quantity cannot be negative")
