package cache

import "time"

// Policy bundles the timing knobs for one cache segment.
type Policy struct {
	FreshFor     time.Duration
	StaleFor     time.Duration
	StaleTimeout time.Duration
}

var (
	UserPolicy = Policy{
		FreshFor:     5 * time.Minute,
		StaleFor:     time.Hour,
		StaleTimeout: time.Second,
	}
	// DownloadsPolicy serves aggregate download counts: refresh after an hour,
	// never wait more than a second for fresh data.
	DownloadsPolicy = Policy{
		FreshFor:     time.Hour,
		StaleFor:     24 * time.Hour,
		StaleTimeout: time.Second,
	}
)

// TTL is the backend expiry used for garbage collection only.
func (p Policy) TTL() time.Duration {
	return p.FreshFor + p.StaleFor
}
