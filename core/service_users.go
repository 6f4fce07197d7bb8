package core

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/goliatone/go-accounts/mailing"
	goerrors "github.com/goliatone/go-errors"
)

type SignupResult struct {
	User User
	// Newsletter is the pending subscription, nil when the user did not opt in
	// or no dispatcher is configured.
	Newsletter *mailing.Delivery
}

// Get fetches the account record, then its stars and packages when asked.
// Related collections are fetched after the record, never cached, and carry
// the caller's identity when the service has one.
func (s *Service) Get(ctx context.Context, name string, options GetOptions) (user User, err error) {
	startedAt := s.now()
	name = strings.TrimSpace(name)
	defer func() {
		s.observeOperation(ctx, startedAt, "get", err, map[string]any{
			"name":     name,
			"cache":    s.cacheEnabled(),
			"stars":    options.Stars,
			"packages": options.Packages,
		})
	}()

	if err := requireName(name); err != nil {
		return User{}, err
	}
	user, err = s.fetchUser(ctx, name)
	if err != nil {
		return User{}, err
	}
	user = Decorate(user)

	target := user.Name
	if target == "" {
		target = name
	}
	if options.Stars {
		stars, err := s.api.GetStars(ctx, target)
		if err != nil {
			return User{}, err
		}
		user.Stars = stars
	}
	if options.Packages {
		packages, err := s.api.GetPackages(ctx, target)
		if err != nil {
			return User{}, err
		}
		user.Packages = packages
	}
	return user, nil
}

func (s *Service) fetchUser(ctx context.Context, name string) (User, error) {
	if !s.cacheEnabled() {
		return s.api.Get(ctx, name)
	}
	raw, err := s.recordCache.Get(ctx, s.api.UserOptions(name), func(ctx context.Context) ([]byte, error) {
		return s.api.GetRaw(ctx, name)
	})
	if err != nil {
		return User{}, err
	}
	return DecodeUser(raw)
}

// LookupEmail returns the account names registered with email. Malformed
// addresses are rejected before any remote call.
func (s *Service) LookupEmail(ctx context.Context, email string) (names []string, err error) {
	startedAt := s.now()
	defer func() {
		s.observeOperation(ctx, startedAt, "lookup_email", err, nil)
	}()

	email = strings.TrimSpace(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	return s.api.LookupEmail(ctx, email)
}

func (s *Service) Login(ctx context.Context, info LoginInfo) (user User, err error) {
	startedAt := s.now()
	info.Name = strings.TrimSpace(info.Name)
	defer func() {
		s.observeOperation(ctx, startedAt, "login", err, map[string]any{"name": info.Name})
	}()

	if err := requireName(info.Name); err != nil {
		return User{}, err
	}
	return s.api.Login(ctx, info)
}

func (s *Service) VerifyPassword(ctx context.Context, name, password string) (User, error) {
	return s.Login(ctx, LoginInfo{Name: name, Password: password})
}

// Signup creates the account remotely. Only after the create succeeds, and
// only for opted-in users, a newsletter subscription is dispatched; its
// outcome never affects the result.
func (s *Service) Signup(ctx context.Context, user User) (result SignupResult, err error) {
	startedAt := s.now()
	user.Name = strings.TrimSpace(user.Name)
	defer func() {
		s.observeOperation(ctx, startedAt, "signup", err, map[string]any{
			"name":      user.Name,
			"npmweekly": user.WantsNewsletter(),
		})
	}()

	if err := requireName(user.Name); err != nil {
		return SignupResult{}, err
	}

	created, err := s.api.Signup(ctx, user)
	if err != nil {
		return SignupResult{}, err
	}
	result = SignupResult{User: created}
	if user.WantsNewsletter() {
		if s.mailer == nil {
			s.logInfo(ctx, "newsletter opt in ignored, no mailing dispatcher", map[string]any{"name": user.Name})
		} else {
			result.Newsletter = s.mailer.Dispatch(ctx, user.Email)
		}
	}
	return result, nil
}

// Save updates the remote profile. It does not invalidate the cache; callers
// that need read-after-write follow with Drop.
func (s *Service) Save(ctx context.Context, user User) (saved User, err error) {
	startedAt := s.now()
	user.Name = strings.TrimSpace(user.Name)
	defer func() {
		s.observeOperation(ctx, startedAt, "save", err, map[string]any{"name": user.Name})
	}()

	if err := requireName(user.Name); err != nil {
		return User{}, err
	}
	return s.api.Save(ctx, user)
}

func (s *Service) ConfirmEmail(ctx context.Context, user User) (confirmed User, err error) {
	startedAt := s.now()
	user.Name = strings.TrimSpace(user.Name)
	defer func() {
		s.observeOperation(ctx, startedAt, "confirm_email", err, map[string]any{"name": user.Name})
	}()

	if err := requireName(user.Name); err != nil {
		return User{}, err
	}
	if strings.TrimSpace(user.VerificationKey) == "" {
		return User{}, NewValidationError("core: verification key is required", goerrors.FieldError{
			Field:   "verification_key",
			Message: "is required",
		})
	}
	return s.api.ConfirmEmail(ctx, user)
}

// Drop invalidates the cached record for name. It is a no-op without a cache.
func (s *Service) Drop(ctx context.Context, name string) (err error) {
	startedAt := s.now()
	name = strings.TrimSpace(name)
	defer func() {
		s.observeOperation(ctx, startedAt, "drop", err, map[string]any{"name": name})
	}()

	if err := requireName(name); err != nil {
		return err
	}
	if s.recordCache == nil {
		return nil
	}
	return s.recordCache.Drop(ctx, s.api.UserOptions(name))
}

// DecodeUser decodes a remote record body. An empty body is the zero record.
func DecodeUser(raw []byte) (User, error) {
	var user User
	if len(bytes.TrimSpace(raw)) == 0 {
		return user, nil
	}
	if err := json.Unmarshal(raw, &user); err != nil {
		return User{}, goerrors.Wrap(err, goerrors.CategoryExternal, "core: decode user record").
			WithCode(http.StatusBadGateway).
			WithTextCode(AccountErrorRemoteFailure)
	}
	return user, nil
}

func ValidateEmail(email string) error {
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return NewValidationError("email is invalid", goerrors.FieldError{
			Field:   "email",
			Message: err.Error(),
		})
	}
	return nil
}

func requireName(name string) error {
	if strings.TrimSpace(name) == "" {
		return NewValidationError("core: name is required", goerrors.FieldError{
			Field:   "name",
			Message: "is required",
		})
	}
	return nil
}
