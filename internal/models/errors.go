package models

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrNoChapter           = errors.New("story has no chapters")
	ErrValidation          = errors.New("invalid input data")
	ErrUnauthorized        = errors.New("authentication required")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUserAlreadyExists   = errors.New("user already exists")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrConflict            = errors.New("chapter order conflict")
	ErrUnknownChoice       = errors.New("choice does not match any chapter choice")
)
