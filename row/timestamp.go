package row

import "fmt"

const (
	// MinPrecision and MaxPrecision bound the fractional-second digits a
	// timestamp type may declare.
	MinPrecision = 0
	MaxPrecision = 9

	// maxCompactPrecision is the highest precision representable in
	// millisecond resolution alone.
	maxCompactPrecision = 3
)

// IsCompact reports whether a timestamp of the given precision can be
// encoded as a bare millisecond value (8 bytes, nanosecond component always
// zero).
func IsCompact(precision int) bool {
	return precision <= maxCompactPrecision
}

// Timestamp is an epoch timestamp with millisecond and
// nanosecond-of-millisecond components.
type Timestamp struct {
	millis      int64
	nanoOfMilli int32
}

// FromEpochMillis returns a timestamp with a zero nanosecond component.
func FromEpochMillis(millis int64) Timestamp {
	return Timestamp{millis: millis}
}

// FromEpochMillisNanos returns a timestamp with an explicit
// nanosecond-of-millisecond component in [0, 1_000_000).
func FromEpochMillisNanos(millis int64, nanoOfMilli int32) Timestamp {
	return Timestamp{millis: millis, nanoOfMilli: nanoOfMilli}
}

// Millisecond returns the epoch millisecond component.
func (t Timestamp) Millisecond() int64 { return t.millis }

// NanoOfMillisecond returns the nanosecond-of-millisecond component.
func (t Timestamp) NanoOfMillisecond() int32 { return t.nanoOfMilli }

func (t Timestamp) String() string {
	return fmt.Sprintf("%d+%dns", t.millis, t.nanoOfMilli)
}
