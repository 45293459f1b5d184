// Package whitelist implements the captive portal's allow list: a set of
// fixed-size network addresses that expire after a period of inactivity.
//
// Goals for this package:
//   - Answer "is this address allowed?" and "allow this address now"
//   - Expire entries lazily while walking the list, and on demand via CleanUp
//   - Hold one lock across each whole walk, so evictions never race
//   - Copy keys in and out; the cache never aliases caller buffers
package whitelist
