package services

import "errors"

// ErrForbidden is returned when the caller may not touch the resource
var ErrForbidden = errors.New("forbidden")

// ErrValidation is returned for bad request payloads; wrap it with the detail
var ErrValidation = errors.New("validation failed")
