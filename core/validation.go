package core

import (
	"errors"
	"mime"
	"net/http"
)

var errInvalidContentType = errors.New("invalid content type")

// Validator defines an interface for request validation operations
type Validator interface {
	// ContentType checks if the request's Content-Type matches the allowed type
	ContentType(r *http.Request, allowedType string) (jsonResponse, error)
}

// DefaultValidator implements the Validator interface
type DefaultValidator struct{}

// NewValidator creates a new DefaultValidator instance
func NewValidator() Validator {
	return &DefaultValidator{}
}

// ContentType compares the media type of the request, parameters such as
// charset or boundary ignored, with allowedType. A mismatch answers 415.
func (v *DefaultValidator) ContentType(r *http.Request, allowedType string) (jsonResponse, error) {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return errorInvalidContentType, errInvalidContentType
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != allowedType {
		return errorInvalidContentType, errInvalidContentType
	}

	return jsonResponse{}, nil
}
