package domain

import "errors"

var (
	ErrChildNotFound      = errors.New("child profile not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrForbidden          = errors.New("profile belongs to another guardian")
	ErrCatalogUnreachable = errors.New("activity catalog unreachable")
)
