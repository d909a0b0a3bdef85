package clock

import (
	"testing"
	"time"
)

func TestNow_UsesNowFuncInUTC(t *testing.T) {
	orig := NowFunc
	t.Cleanup(func() { NowFunc = orig })

	zone := time.FixedZone("X", 3*3600)
	NowFunc = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 123456789, zone) }

	got := Now()
	want := time.Date(2026, 3, 1, 9, 0, 0, 123456000, time.UTC)
	if !got.Equal(want) || got.Location() != time.UTC {
		t.Errorf("Now() = %v, want %v", got, want)
	}
}
