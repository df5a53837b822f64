package services

import "errors"

var (
	ErrInvalidFilter      = errors.New("invalid filter")
	ErrMissingCredentials = errors.New("username and password are required")
	ErrClientNotFound     = errors.New("client not found")
	ErrVisitNotFound      = errors.New("visit not found")
)
