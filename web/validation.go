package web

import (
	"errors"
	"net/url"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// ProfileFields are the resource entries a user may edit on their profile.
var ProfileFields = []string{"fullname", "github", "twitter", "homepage", "freenode"}

var immutableFields = []string{"_id", "name", "email"}

type ErrorDetail struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func notAllowed(any) error {
	return errors.New("is not allowed")
}

// validateProfilePayload rejects identity fields and malformed resources.
func validateProfilePayload(payload map[string]any) *ValidationError {
	rules := make([]*validation.KeyRules, 0, len(immutableFields)+len(ProfileFields))
	for _, field := range immutableFields {
		rules = append(rules, validation.Key(field, validation.By(notAllowed)).Optional())
	}
	for _, field := range ProfileFields {
		fieldRules := []validation.Rule{validation.Length(0, 255)}
		if field == "homepage" {
			fieldRules = append(fieldRules, is.URL)
		}
		rules = append(rules, validation.Key(field, fieldRules...).Optional())
	}

	err := validation.Validate(payload, validation.Map(rules...).AllowExtraKeys())
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Message: err.Error(), Details: []ErrorDetail{{Message: err.Error()}}}
	}
	details := make([]ErrorDetail, 0, len(fieldErrs))
	for path, fieldErr := range fieldErrs {
		details = append(details, ErrorDetail{Path: path, Message: fieldErr.Error()})
	}
	slices.SortFunc(details, func(a, b ErrorDetail) int {
		return strings.Compare(a.Path, b.Path)
	})
	return &ValidationError{Message: "profile update is invalid", Details: details}
}

func formPayload(form url.Values, skip ...string) map[string]any {
	payload := make(map[string]any, len(form))
	for key, values := range form {
		if slices.Contains(skip, key) || len(values) == 0 {
			continue
		}
		payload[key] = strings.TrimSpace(values[0])
	}
	return payload
}
