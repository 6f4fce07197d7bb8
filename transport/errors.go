package transport

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeBadInput        = "ACCOUNT_TRANSPORT_BAD_INPUT"
	TextCodeExternalFailure = "ACCOUNT_TRANSPORT_FAILURE"
	TextCodeInternal        = "ACCOUNT_TRANSPORT_INTERNAL"
)

func transportError(
	message string,
	category goerrors.Category,
	code int,
	metadata map[string]any,
) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(transportTextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportWrapError(
	source error,
	category goerrors.Category,
	message string,
	code int,
	metadata map[string]any,
) error {
	if source == nil {
		return transportError(message, category, code, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(transportTextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return TextCodeBadInput
	case goerrors.CategoryExternal:
		return TextCodeExternalFailure
	default:
		return TextCodeInternal
	}
}

// IsTransportError reports whether err was produced by an adapter failing to
// complete the exchange, as opposed to a remote status.
func IsTransportError(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	switch rich.TextCode {
	case TextCodeExternalFailure, TextCodeBadInput, TextCodeInternal:
		return true
	}
	return false
}
