package domain

import "errors"

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrInvalidTask      = errors.New("invalid task")
	ErrUnknownMember    = errors.New("unknown team member")
	ErrEmptyRoster      = errors.New("no known team members configured")
	ErrSessionNotFound  = errors.New("session not found")
	ErrModelUnavailable = errors.New("language model is not configured")
	ErrSecretNotFound   = errors.New("secret not found")
	ErrNoSuggestions    = errors.New("no task suggestions available")
)
