package core

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

const gravatarBaseURL = "https://s.gravatar.com/avatar/"

var handlePrefixes = map[string][]string{
	"twitter": {"https://twitter.com/", "http://twitter.com/", "twitter.com/", "https://x.com/", "x.com/"},
	"github":  {"https://github.com/", "http://github.com/", "github.com/"},
}

// Decorate derives presentation fields from a fetched record: avatar URLs
// from the email and bare handles for social resources.
func Decorate(user User) User {
	if email := strings.ToLower(strings.TrimSpace(user.Email)); email != "" {
		sum := md5.Sum([]byte(email))
		hash := hex.EncodeToString(sum[:])
		user.Avatar = &Avatar{
			Small:  gravatarURL(hash, 100),
			Medium: gravatarURL(hash, 496),
		}
	}
	if len(user.Resources) > 0 {
		resources := make(map[string]string, len(user.Resources))
		for key, value := range user.Resources {
			resources[key] = normalizeResource(key, value)
		}
		user.Resources = resources
	}
	return user
}

func gravatarURL(hash string, size int) string {
	return fmt.Sprintf("%s%s?size=%d&default=retro", gravatarBaseURL, hash, size)
}

func normalizeResource(key, value string) string {
	value = strings.TrimSpace(value)
	prefixes, ok := handlePrefixes[strings.ToLower(key)]
	if !ok {
		return value
	}
	lower := strings.ToLower(value)
	for _, prefix := range prefixes {
		if strings.HasPrefix(lower, prefix) {
			value = value[len(prefix):]
			break
		}
	}
	return strings.TrimSuffix(strings.TrimPrefix(value, "@"), "/")
}
