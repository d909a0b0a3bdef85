package clock

import "time"

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now returns NowFunc truncated to microseconds in UTC, the precision and
// zone every persisted timestamp uses.
func Now() time.Time { return NowFunc().UTC().Truncate(time.Microsecond) }
