package store

import "errors"

// ErrUpstreamFetch wraps any CMS or provider failure: network errors,
// non-2xx responses and responses that fail boundary validation. The
// catalog is never assembled from partial upstream data.
var ErrUpstreamFetch = errors.New("upstream fetch failed")
