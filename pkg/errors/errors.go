package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	CodeAPIError          = "API_ERROR"
	CodeConfiguration     = "CONFIGURATION_ERROR"
	CodeAuthentication    = "AUTHENTICATION_ERROR"
	CodeProfileFetch      = "PROFILE_FETCH_ERROR"
	CodeVocabularyFetch   = "VOCABULARY_FETCH_ERROR"
	CodeContentGeneration = "CONTENT_GENERATION_ERROR"
	CodeDelivery          = "DELIVERY_ERROR"
)

// ErrNoReplyFound is returned when a conversational backend produced no
// message authored by the assistant without a type tag.
var ErrNoReplyFound = stderrors.New("no assistant reply found in response")

type DigestError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *DigestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DigestError) Unwrap() error {
	return e.Cause
}

func (e *DigestError) WithCause(cause error) *DigestError {
	e.Cause = cause
	return e
}

type APIError struct {
	*DigestError
}

func NewAPIError(message string, statusCode int, context map[string]any) *APIError {
	return &APIError{
		DigestError: &DigestError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

// WithCause keeps the *APIError type when attaching a cause.
func (e *APIError) WithCause(cause error) *APIError {
	e.Cause = cause
	return e
}

// ConfigurationError reports a missing or invalid setting. It is raised before
// any network call is made.
type ConfigurationError struct {
	*DigestError
	Field string
}

func NewConfigurationError(message, field string) *ConfigurationError {
	return &ConfigurationError{
		DigestError: &DigestError{
			Message:    message,
			Code:       CodeConfiguration,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
			},
		},
		Field: field,
	}
}

type AuthenticationError struct {
	*DigestError
	Username string
}

func NewAuthenticationError(message, username string, statusCode int, cause error) *AuthenticationError {
	return &AuthenticationError{
		DigestError: &DigestError{
			Message:    message,
			Code:       CodeAuthentication,
			StatusCode: statusCode,
			Context: map[string]any{
				"username": username,
			},
			Cause: cause,
		},
		Username: username,
	}
}

type ProfileFetchError struct {
	*DigestError
}

func NewProfileFetchError(message string, statusCode int, cause error) *ProfileFetchError {
	return &ProfileFetchError{
		DigestError: &DigestError{
			Message:    message,
			Code:       CodeProfileFetch,
			StatusCode: statusCode,
			Cause:      cause,
		},
	}
}

type VocabularyFetchError struct {
	*DigestError
}

func NewVocabularyFetchError(message string, statusCode int, cause error) *VocabularyFetchError {
	return &VocabularyFetchError{
		DigestError: &DigestError{
			Message:    message,
			Code:       CodeVocabularyFetch,
			StatusCode: statusCode,
			Cause:      cause,
		},
	}
}

type ContentGenerationError struct {
	*DigestError
	Backend string
	Step    string
}

func NewContentGenerationError(message, backend, step string, cause error) *ContentGenerationError {
	return &ContentGenerationError{
		DigestError: &DigestError{
			Message:    message,
			Code:       CodeContentGeneration,
			StatusCode: 500,
			Context: map[string]any{
				"backend": backend,
				"step":    step,
			},
			Cause: cause,
		},
		Backend: backend,
		Step:    step,
	}
}

type DeliveryError struct {
	*DigestError
	Messenger string
}

func NewDeliveryError(message, messenger string, statusCode int, cause error) *DeliveryError {
	return &DeliveryError{
		DigestError: &DigestError{
			Message:    message,
			Code:       CodeDelivery,
			StatusCode: statusCode,
			Context: map[string]any{
				"messenger": messenger,
			},
			Cause: cause,
		},
		Messenger: messenger,
	}
}

// CodeOf returns the code of the first DigestError in err's chain, or an empty
// string.
func CodeOf(err error) string {
	var cfgErr *ConfigurationError
	var authErr *AuthenticationError
	var profileErr *ProfileFetchError
	var vocabErr *VocabularyFetchError
	var genErr *ContentGenerationError
	var deliveryErr *DeliveryError
	var apiErr *APIError
	var base *DigestError

	switch {
	case stderrors.As(err, &cfgErr):
		return cfgErr.Code
	case stderrors.As(err, &authErr):
		return authErr.Code
	case stderrors.As(err, &profileErr):
		return profileErr.Code
	case stderrors.As(err, &vocabErr):
		return vocabErr.Code
	case stderrors.As(err, &genErr):
		return genErr.Code
	case stderrors.As(err, &deliveryErr):
		return deliveryErr.Code
	case stderrors.As(err, &apiErr):
		return apiErr.Code
	case stderrors.As(err, &base):
		return base.Code
	}
	return ""
}

// IsFatal reports whether err must abort the whole run.
func IsFatal(err error) bool {
	switch CodeOf(err) {
	case CodeConfiguration, CodeAuthentication, CodeProfileFetch, CodeVocabularyFetch:
		return true
	}
	return false
}

// StatusCode extracts the HTTP status carried by an APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
