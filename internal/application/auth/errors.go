package auth

import "errors"

var (
	ErrAllFieldsRequired = errors.New("All fields are required")
	ErrUserExists        = errors.New("User already exists")
	ErrUserNotFound      = errors.New("User does not exist")
	ErrIncorrectPassword = errors.New("Incorrect password or username")
	ErrNotAuthenticated  = errors.New("You'll have to login")
)
