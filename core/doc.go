// Package core contains the account domain types, the remote and cache
// contracts, and the Service that orchestrates them. Adapters for the remote
// API, the cache backend and the mailing list depend on this package; core
// depends only on their narrow contracts.
package core
