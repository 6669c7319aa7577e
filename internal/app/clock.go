package app

import "time"

// UTCClock stamps keys and metadata in UTC.
func UTCClock() time.Time { return time.Now().UTC() }
