package service

import "errors"

// Sentinel errors returned by the inventory services. Handlers classify them
// with errors.Is; messages carry the detail.
var (
	ErrValidation          = errors.New("validation failed")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrItemNotFound        = errors.New("item not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
)
