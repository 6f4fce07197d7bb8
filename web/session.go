package web

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const (
	HeaderAccountName  = "X-Account-Name"
	HeaderAccountEmail = "X-Account-Email"
	CrumbField         = "crumb"
)

// HeaderSessionResolver trusts identity headers set by an upstream auth
// proxy. The bearer comes from the Authorization header.
type HeaderSessionResolver struct{}

func (HeaderSessionResolver) Resolve(r *http.Request) (Session, bool) {
	name := strings.TrimSpace(r.Header.Get(HeaderAccountName))
	if name == "" {
		return Session{}, false
	}
	bearer := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(bearer) > 7 && strings.EqualFold(bearer[:7], "bearer ") {
		bearer = strings.TrimSpace(bearer[7:])
	}
	return Session{
		Name:   name,
		Email:  strings.TrimSpace(r.Header.Get(HeaderAccountEmail)),
		Bearer: bearer,
	}, true
}

// CrumbVerifier is a double-submit check: the crumb form field must match
// the crumb cookie.
type CrumbVerifier struct{}

func (CrumbVerifier) Verify(r *http.Request) bool {
	cookie, err := r.Cookie(CrumbField)
	if err != nil || cookie.Value == "" {
		return false
	}
	submitted := r.PostFormValue(CrumbField)
	if submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(submitted)) == 1
}

var (
	_ SessionResolver = HeaderSessionResolver{}
	_ CSRFVerifier    = CrumbVerifier{}
)
