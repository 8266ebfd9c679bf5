package timeutil

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Epoch identifies how a Billings database stores timestamps as REAL seconds.
type Epoch string

const (
	// EpochUnix is used by Billings 3.5 and later.
	EpochUnix Epoch = "unix"
	// EpochReference is the NSDate reference date, 2001-01-01 00:00:00 UTC.
	EpochReference Epoch = "reference"
)

// referenceOffset is the number of seconds between 1970-01-01 and 2001-01-01 UTC.
const referenceOffset = 978307200

func ParseEpoch(value string) (Epoch, error) {
	switch Epoch(strings.ToLower(strings.TrimSpace(value))) {
	case "", EpochUnix:
		return EpochUnix, nil
	case EpochReference, "nsdate":
		return EpochReference, nil
	default:
		return "", fmt.Errorf("unsupported epoch %q (supported: unix, reference)", value)
	}
}

// FromSeconds converts a stored REAL timestamp to local time.
func FromSeconds(seconds float64, epoch Epoch) time.Time {
	if epoch == EpochReference {
		seconds += referenceOffset
	}
	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(math.Round(frac*1e9))).In(time.Local)
}

// ToSeconds is the inverse of FromSeconds. Whole seconds convert exactly.
func ToSeconds(value time.Time, epoch Epoch) float64 {
	whole := value.Unix()
	if epoch == EpochReference {
		whole -= referenceOffset
	}
	return float64(whole) + float64(value.Nanosecond())/1e9
}
