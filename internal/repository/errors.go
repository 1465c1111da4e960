package repository

import "errors"

var (
	// ErrInvalidLocation indicates an empty or unusable image location
	ErrInvalidLocation = errors.New("invalid image location")

	// ErrRecordNotFound indicates the score record was not found
	ErrRecordNotFound = errors.New("score record not found")

	// ErrRepositoryUnavailable indicates the repository is unavailable
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
