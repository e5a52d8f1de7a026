package row

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tablekit/tablekit/serde"
)

// timestampConfigVersion versions the persisted serializer configuration.
const timestampConfigVersion = 1

// TimestampSerializer is the serde.Serializer for Timestamp values.
//
// A timestamp serializes as a bare 8-byte millisecond value when the
// declared precision is compact, otherwise as 8 bytes of milliseconds
// followed by 4 bytes of nanoseconds-of-millisecond. Writer and reader of a
// stream must be constructed with the same precision; the Snapshot/Restore
// pair enforces this for persisted streams.
type TimestampSerializer struct {
	precision int
}

var _ serde.Serializer[Timestamp] = TimestampSerializer{}

// NewTimestampSerializer returns a serializer for the given precision.
func NewTimestampSerializer(precision int) (TimestampSerializer, error) {
	if precision < MinPrecision || precision > MaxPrecision {
		return TimestampSerializer{}, fmt.Errorf("row: timestamp precision %d outside [%d, %d]",
			precision, MinPrecision, MaxPrecision)
	}
	return TimestampSerializer{precision: precision}, nil
}

// Precision returns the declared precision.
func (s TimestampSerializer) Precision() int { return s.precision }

// Length returns the fixed encoded length: 8 bytes when compact, 12
// otherwise.
func (s TimestampSerializer) Length() int {
	if IsCompact(s.precision) {
		return 8
	}
	return 12
}

// Serialize writes v to w.
func (s TimestampSerializer) Serialize(w io.Writer, v Timestamp) error {
	var buf [12]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(v.Millisecond()))
	if IsCompact(s.precision) {
		if v.NanoOfMillisecond() != 0 {
			return fmt.Errorf("row: non-zero nanos %d with compact precision %d",
				v.NanoOfMillisecond(), s.precision)
		}
		_, err := w.Write(buf[:8])
		return err
	}
	binary.LittleEndian.PutUint32(buf[8:12], uint32(v.NanoOfMillisecond()))
	_, err := w.Write(buf[:12])
	return err
}

// Deserialize reads one timestamp from r, mirroring Serialize.
func (s TimestampSerializer) Deserialize(r io.Reader) (Timestamp, error) {
	var buf [12]byte
	if IsCompact(s.precision) {
		if _, err := io.ReadFull(r, buf[:8]); err != nil {
			return Timestamp{}, err
		}
		return FromEpochMillis(int64(binary.LittleEndian.Uint64(buf[0:8]))), nil
	}
	if _, err := io.ReadFull(r, buf[:12]); err != nil {
		return Timestamp{}, err
	}
	return FromEpochMillisNanos(
		int64(binary.LittleEndian.Uint64(buf[0:8])),
		int32(binary.LittleEndian.Uint32(buf[8:12])),
	), nil
}

// Snapshot returns the serializable configuration.
func (s TimestampSerializer) Snapshot() serde.Config {
	return TimestampConfig{Precision: s.precision}
}

// TimestampConfig is the persisted configuration of a TimestampSerializer.
type TimestampConfig struct {
	Precision int
}

var _ serde.Config = TimestampConfig{}

// WriteTo persists the configuration as a version byte plus the precision.
func (c TimestampConfig) WriteTo(w io.Writer) error {
	var buf [5]byte
	buf[0] = timestampConfigVersion
	binary.LittleEndian.PutUint32(buf[1:5], uint32(c.Precision))
	_, err := w.Write(buf[:])
	return err
}

// ReadTimestampConfig reads a configuration persisted by WriteTo.
func ReadTimestampConfig(r io.Reader) (TimestampConfig, error) {
	var buf [5]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return TimestampConfig{}, err
	}
	if buf[0] != timestampConfigVersion {
		return TimestampConfig{}, fmt.Errorf("row: unsupported timestamp config version %d", buf[0])
	}
	return TimestampConfig{Precision: int(binary.LittleEndian.Uint32(buf[1:5]))}, nil
}

// ResolveCompatibility reports CompatibleAsIs only for an identical
// timestamp configuration; any precision or shape mismatch is Incompatible.
// Mismatches are never coerced.
func (c TimestampConfig) ResolveCompatibility(requested serde.Config) serde.Compatibility {
	other, ok := requested.(TimestampConfig)
	if !ok {
		return serde.Incompatible
	}
	if other.Precision != c.Precision {
		return serde.Incompatible
	}
	return serde.CompatibleAsIs
}

// RestoreTimestampSerializer is the pure restore function for a persisted
// configuration: config in, ready serializer out, no mutable intermediate.
func RestoreTimestampSerializer(c TimestampConfig) (TimestampSerializer, error) {
	return NewTimestampSerializer(c.Precision)
}
