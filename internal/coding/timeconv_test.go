package coding

import (
	"strings"
	"testing"
	"time"
)

func TestEpochConversions(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)

	got, err := EpochToTimestamp("1700000000", loc)
	if err != nil {
		t.Fatalf("EpochToTimestamp: %v", err)
	}
	if got != "2023-11-15 00:13:20" {
		t.Errorf("got %s", got)
	}

	got, err = EpochToTimestamp(" 1700000000.75 ", time.UTC)
	if err != nil {
		t.Fatalf("fractional epoch: %v", err)
	}
	if got != "2023-11-14 22:13:20" {
		t.Errorf("fractional: got %s", got)
	}

	epoch, err := TimestampToEpoch("2023-11-15 00:13:20", loc)
	if err != nil {
		t.Fatalf("TimestampToEpoch: %v", err)
	}
	if epoch != 1700000000 {
		t.Errorf("got %d", epoch)
	}
}

func TestTimeConversions_Invalid(t *testing.T) {
	for _, in := range []string{"yesterday", "NaN", "Inf", "-inf", "1e300", "-1e300", "253402300800"} {
		_, err := EpochToTimestamp(in, time.UTC)
		if err == nil || !strings.HasPrefix(err.Error(), "time error") {
			t.Errorf("EpochToTimestamp(%q) error = %v, want a time error", in, err)
		}
	}
	if got, err := EpochToTimestamp("253402300799", time.UTC); err != nil || got != "9999-12-31 23:59:59" {
		t.Errorf("EpochToTimestamp(max) = %q, %v", got, err)
	}
	if _, err := TimestampToEpoch("2023-11-15T00:13:20Z", time.UTC); err == nil {
		t.Error("want error for wrong layout")
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := FormatTimestamp(ts, time.UTC); got != "2026-01-02 03:04:05" {
		t.Errorf("got %s", got)
	}
}
