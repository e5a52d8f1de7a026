// Package serde defines the typed-value codec contract used for
// checkpoint-style persistence of fixed-shape values.
//
// A Serializer turns values into bytes and back. Its configuration can be
// snapshotted into a serializable Config and later restored through a pure
// restore function, so long-lived streams can verify that the codec reading
// them matches the codec that wrote them. Compatibility is binary: either a
// persisted configuration is compatible as-is with a requested one, or it is
// incompatible. There are no partial-compatibility semantics and no
// best-effort coercion.
package serde

import "io"

// Compatibility is the result of checking a persisted codec configuration
// against a newly requested one.
type Compatibility int

const (
	// CompatibleAsIs means the new codec can read data written by the old one
	// without any migration.
	CompatibleAsIs Compatibility = iota
	// Incompatible means the configurations do not match; the caller must
	// reject the stream rather than reinterpret it.
	Incompatible
)

func (c Compatibility) String() string {
	switch c {
	case CompatibleAsIs:
		return "compatible-as-is"
	case Incompatible:
		return "incompatible"
	default:
		return "unknown"
	}
}

// Serializer encodes and decodes values of type T.
//
// Implementations must be immutable: all configuration is fixed at
// construction and captured by Snapshot.
type Serializer[T any] interface {
	// Serialize writes v to w.
	Serialize(w io.Writer, v T) error

	// Deserialize reads one value from r.
	Deserialize(r io.Reader) (T, error)

	// Length returns the fixed encoded length in bytes, or -1 if the
	// encoding is variable-length.
	Length() int

	// Snapshot returns the serializable configuration of this serializer.
	Snapshot() Config
}

// Config is a serializable codec configuration. It accompanies persisted
// streams so that rehydration can verify codec compatibility before any
// value is decoded.
type Config interface {
	// WriteTo persists the configuration.
	WriteTo(w io.Writer) error

	// ResolveCompatibility checks a newly requested configuration against
	// this persisted one.
	ResolveCompatibility(requested Config) Compatibility
}
