package entity

import "errors"

// ErrRateUnavailable marks a fiat rate that can be served neither from the
// remote archive nor from a fresh cached file.
var ErrRateUnavailable = errors.New("fiat rate unavailable")
