package cache

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

type State int

const (
	StateMissing State = iota
	StateFresh
	StateStale
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	case StateExpired:
		return "expired"
	default:
		return "missing"
	}
}

// Entry is the stored envelope for one cached response body.
type Entry struct {
	Key      string        `msgpack:"key"`
	Value    []byte        `msgpack:"value"`
	StoredAt time.Time     `msgpack:"stored_at"`
	FreshFor time.Duration `msgpack:"fresh_for"`
	StaleFor time.Duration `msgpack:"stale_for"`
}

// StateAt derives the entry state purely from timestamps.
func (e Entry) StateAt(now time.Time) State {
	if e.StoredAt.IsZero() {
		return StateMissing
	}
	age := now.Sub(e.StoredAt)
	switch {
	case age < e.FreshFor:
		return StateFresh
	case age < e.FreshFor+e.StaleFor:
		return StateStale
	default:
		return StateExpired
	}
}

func (e Entry) clone() Entry {
	cloned := e
	if e.Value != nil {
		cloned.Value = append([]byte(nil), e.Value...)
	}
	return cloned
}

func encodeEntry(entry Entry) ([]byte, error) {
	return msgpack.Marshal(entry)
}

func decodeEntry(raw []byte) (Entry, error) {
	var entry Entry
	if err := msgpack.Unmarshal(raw, &entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}
