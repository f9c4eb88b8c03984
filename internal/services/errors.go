package services

import "errors"

// ErrInvalidCredentials covers unknown email, wrong password and malformed
// email alike; callers present one message for all of them.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidNickname is returned when the display nickname is not 1-5
// characters long.
var ErrInvalidNickname = errors.New("nickname must be 1-5 characters")

// ErrForbidden is returned when a caller tries to delete a record it does
// not own.
var ErrForbidden = errors.New("forbidden")

// ErrEmptyComment is returned when a comment contains only whitespace.
var ErrEmptyComment = errors.New("comment text is empty")
