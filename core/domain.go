package core

import (
	"encoding/json"
	"strings"
)

// OptInOn is the form value that marks a mailing-list opt in.
const OptInOn = "on"

type Package struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Avatar struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
}

// User is the remote account record. Fields the remote returns that are not
// modelled here are kept in Raw and written back on Save.
type User struct {
	Name            string            `json:"name"`
	Email           string            `json:"email,omitempty"`
	Password        string            `json:"password,omitempty"`
	Resources       map[string]string `json:"resources,omitempty"`
	VerificationKey string            `json:"verification_key,omitempty"`
	NPMWeekly       string            `json:"npmweekly,omitempty"`
	Avatar          *Avatar           `json:"avatar,omitempty"`
	Stars           []string          `json:"stars,omitempty"`
	Packages        []Package         `json:"packages,omitempty"`
	Raw             map[string]any    `json:"-"`
}

type userFields User

var knownUserFields = []string{
	"name", "email", "password", "resources", "verification_key",
	"npmweekly", "avatar", "stars", "packages",
}

func (u *User) UnmarshalJSON(data []byte) error {
	var fields userFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range knownUserFields {
		delete(raw, key)
	}
	*u = User(fields)
	if len(raw) > 0 {
		u.Raw = raw
	}
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(userFields(u))
	if err != nil {
		return nil, err
	}
	if len(u.Raw) == 0 {
		return known, nil
	}
	merged := make(map[string]any, len(u.Raw)+len(knownUserFields))
	for key, value := range u.Raw {
		merged[key] = value
	}
	var knownMap map[string]any
	if err := json.Unmarshal(known, &knownMap); err != nil {
		return nil, err
	}
	for key, value := range knownMap {
		merged[key] = value
	}
	return json.Marshal(merged)
}

// WantsNewsletter reports whether the record opted in to the mailing list.
func (u User) WantsNewsletter() bool {
	return strings.EqualFold(strings.TrimSpace(u.NPMWeekly), OptInOn)
}

type LoginInfo struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type GetOptions struct {
	Stars    bool
	Packages bool
}
