package core

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-accounts/transport"
	goerrors "github.com/goliatone/go-errors"
)

const (
	AccountErrorBadInput            = "ACCOUNT_BAD_INPUT"
	AccountErrorNotFound            = "ACCOUNT_NOT_FOUND"
	AccountErrorIncorrectCredential = "ACCOUNT_INCORRECT_CREDENTIAL"
	AccountErrorForbidden           = "ACCOUNT_FORBIDDEN"
	AccountErrorRemoteFailure       = "ACCOUNT_REMOTE_FAILURE"
	AccountErrorInternal            = "ACCOUNT_INTERNAL_ERROR"
)

// NewRemoteError describes a non-success status from the remote API.
func NewRemoteError(status int, message string, metadata map[string]any) *goerrors.Error {
	return newAccountError(message, categoryForStatus(status), status, AccountErrorRemoteFailure, metadata)
}

func NewNotFoundError(message string, metadata map[string]any) *goerrors.Error {
	return newAccountError(message, goerrors.CategoryNotFound, http.StatusNotFound, AccountErrorNotFound, metadata)
}

func NewIncorrectCredentialError(message string, metadata map[string]any) *goerrors.Error {
	return newAccountError(message, goerrors.CategoryAuth, http.StatusUnauthorized, AccountErrorIncorrectCredential, metadata)
}

func NewValidationError(message string, fields ...goerrors.FieldError) *goerrors.Error {
	return goerrors.NewValidation(message, fields...).
		WithCode(http.StatusBadRequest).
		WithTextCode(AccountErrorBadInput).
		WithSeverity(goerrors.SeverityError)
}

func newAccountError(message string, category goerrors.Category, status int, textCode string, metadata map[string]any) *goerrors.Error {
	err := goerrors.New(message, category).
		WithCode(status).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(RedactSensitiveMap(metadata))
	}
	return err
}

// StatusCode returns the HTTP status carried by err, or 0 when there is none.
func StatusCode(err error) int {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.Code
	}
	return 0
}

func IsNotFound(err error) bool {
	return hasTextCode(err, AccountErrorNotFound)
}

func IsIncorrectCredential(err error) bool {
	return hasTextCode(err, AccountErrorIncorrectCredential)
}

// IsTransportError reports whether err came from a failed exchange rather
// than a remote status.
func IsTransportError(err error) bool {
	return transport.IsTransportError(err)
}

func hasTextCode(err error, textCode string) bool {
	var rich *goerrors.Error
	return goerrors.As(err, &rich) && rich.TextCode == textCode
}

func categoryForStatus(status int) goerrors.Category {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return goerrors.CategoryBadInput
	case status == http.StatusUnauthorized:
		return goerrors.CategoryAuth
	case status == http.StatusForbidden:
		return goerrors.CategoryAuthz
	case status == http.StatusNotFound:
		return goerrors.CategoryNotFound
	case status == http.StatusConflict:
		return goerrors.CategoryConflict
	case status == http.StatusTooManyRequests:
		return goerrors.CategoryRateLimit
	case status >= http.StatusInternalServerError:
		return goerrors.CategoryExternal
	default:
		return goerrors.CategoryOperation
	}
}

func accountErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureAccountErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "not found"):
		return ensureAccountErrorEnvelope(goerrors.New(err.Error(), goerrors.CategoryNotFound).WithTextCode(AccountErrorNotFound))
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return ensureAccountErrorEnvelope(goerrors.New(err.Error(), goerrors.CategoryBadInput).WithTextCode(AccountErrorBadInput))
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureAccountErrorEnvelope(mapped)
}

func ensureAccountErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = accountHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultAccountTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultAccountTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return AccountErrorBadInput
	case goerrors.CategoryNotFound:
		return AccountErrorNotFound
	case goerrors.CategoryAuth:
		return AccountErrorIncorrectCredential
	case goerrors.CategoryAuthz:
		return AccountErrorForbidden
	case goerrors.CategoryExternal, goerrors.CategoryOperation:
		return AccountErrorRemoteFailure
	default:
		return AccountErrorInternal
	}
}

func accountHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
