package cache

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Descriptor identifies a remote request whose response body is cacheable.
type Descriptor struct {
	Method  string
	URL     string
	Headers map[string]string
	JSON    bool
}

// Header returns the value of the named header, matched case-insensitively.
func (d Descriptor) Header(name string) string {
	for key, value := range d.Headers {
		if strings.EqualFold(key, name) {
			return value
		}
	}
	return ""
}

// KeyFor derives the storage key: <prefix><segment>:<xxhash64 of url and key headers>.
func KeyFor(prefix, segment string, keyHeaders []string, desc Descriptor) string {
	digest := xxhash.New()
	_, _ = digest.WriteString(strings.TrimSpace(desc.URL))
	for _, name := range normalizeHeaderNames(keyHeaders) {
		_, _ = digest.WriteString("\n" + name + ":" + desc.Header(name))
	}
	return prefix + segment + ":" + strconv.FormatUint(digest.Sum64(), 16)
}

func normalizeHeaderNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || slices.Contains(out, name) {
			continue
		}
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
