package config

import (
	"strconv"
	"time"

	"github.com/jrsteele09/tripmate-client/fetch"
)

const (
	retriesVar    = "TRIPMATE_RETRIES"
	retryDelayVar = "TRIPMATE_RETRY_DELAY_MS"
	factorVar     = "TRIPMATE_BACKOFF_FACTOR"

	defaultRetries      = fetch.DefaultRetries
	defaultRetryDelayMS = int(fetch.DefaultRetryDelay / time.Millisecond)
	defaultFactor       = fetch.DefaultFactor
)

type Fetch struct {
	src *sources
}

var _ FetchConfig = Fetch{}

// GetRetries returns the maximum number of retries after the first attempt.
// Invalid or negative values fall back to the default.
func (f Fetch) GetRetries() int {
	n, err := strconv.Atoi(f.src.get(retriesVar, ""))
	if err != nil || n < 0 {
		return defaultRetries
	}
	return n
}

func (f Fetch) GetRetryDelay() time.Duration {
	ms, err := strconv.Atoi(f.src.get(retryDelayVar, ""))
	if err != nil || ms < 0 {
		ms = defaultRetryDelayMS
	}
	return time.Duration(ms) * time.Millisecond
}

// GetBackoffFactor follows the same floor as fetch.WithFactor
func (f Fetch) GetBackoffFactor() float64 {
	factor, err := strconv.ParseFloat(f.src.get(factorVar, ""), 64)
	if err != nil || factor < fetch.MinFactor {
		return defaultFactor
	}
	return factor
}
