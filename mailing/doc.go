// Package mailing subscribes newly created accounts to a newsletter list as a
// best-effort side channel. Failures are logged and never surface to the
// operation that triggered them.
package mailing
