package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedPlatform  = errors.New("unsupported platform")
	ErrUnsupportedAction    = errors.New("unsupported action")
	ErrEmptyToken           = errors.New("token must not be empty")
	ErrInvalidToken         = errors.New("invalid token")
	ErrGroupNotFound        = errors.New("group not found")
	ErrUnknownEntityType    = errors.New("unknown entity type")
	ErrInvalidEntityType    = errors.New("invalid entity type")
	ErrSubgroupsUnsupported = errors.New("subgroups are not supported on this platform")
	ErrUnsupportedType      = errors.New("unsupported type")
	ErrInvalidJSON          = errors.New("response body is not valid JSON")
	ErrNotArray             = errors.New("response body is not a JSON array")
	ErrNotObject            = errors.New("element is not a JSON object")
	ErrDestinationNotEmpty  = errors.New("destination directory is not empty")
	ErrMissingDependency    = errors.New("missing required dependency")
)

// StatusError reports a non-200 HTTP response together with its body, so
// the platform's own diagnostic reaches the user unmodified.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}
