// Package executable implements the Executable/ExecutableCache model
// (C5): prepared, format-specific computation artifacts memoized by a
// (format, payload identity) key.
package executable

import (
	"github.com/monkeyking/iree/internal/status"
)

// Format is a 32-bit tag identifying a wire format an ExecutableCache
// knows how to prepare (e.g. the bytecode format identifier).
type Format uint32

// DebugInfo is opaque debugging metadata attached to a Spec.
type DebugInfo struct {
	Name string
	Data []byte
}

// Spec describes an unprepared executable: its format, opaque payload
// bytes, and optional debug info.
type Spec struct {
	Format    Format
	Payload   []byte
	DebugInfo *DebugInfo
}

// CachingMode controls how PrepareExecutable treats the caller-provided
// payload and the resulting Executable.
type CachingMode uint32

const (
	// AliasProvidedData retains a pointer into caller-owned bytes; the
	// caller guarantees the payload's lifetime outlives the Executable.
	AliasProvidedData CachingMode = 1 << iota
	// AllowPersistentCaching lets the cache persist the prepared result
	// across invocations, keyed by (format, payload identity).
	AllowPersistentCaching
	// AllowOptimization lets the cache spend additional time optimizing
	// the prepared executable.
	AllowOptimization
)

func (m CachingMode) Has(bit CachingMode) bool { return m&bit != 0 }

// Executable is a prepared handle usable by a matching device.
type Executable interface {
	Format() Format
}

// Cache prepares (loads/validates) executables identified by a format
// tag and opaque payload. Implementations must return the same
// Executable for identical (format, payload identity) pairs when
// AllowPersistentCaching is requested.
type Cache interface {
	// CanPrepareFormat reports whether this cache knows how to prepare
	// executables tagged with format.
	CanPrepareFormat(format Format) bool

	// PrepareExecutable loads/validates spec under the given caching
	// mode, returning Unimplemented if the format is unsupported or
	// InvalidArgument if the payload is malformed.
	PrepareExecutable(mode CachingMode, spec Spec) (Executable, error)
}

// PayloadIdentity is a key type memoization caches can use: it combines
// format with a hash-free identity — the payload's byte content, so two
// specs with the same format and equal payload bytes share one key.
type PayloadIdentity struct {
	Format Format
	Key    string
}

// IdentityFor derives a cache key for spec. It uses the payload bytes
// verbatim as the key's data, copying them into the key string whatever
// caching mode the caller prepares under.
func IdentityFor(spec Spec) PayloadIdentity {
	return PayloadIdentity{Format: spec.Format, Key: string(spec.Payload)}
}

// ErrUnimplementedFormat is the canonical error returned by a Cache
// that does not recognize spec.Format.
func ErrUnimplementedFormat(format Format) error {
	return status.New(status.Unimplemented, "executable format %#x not supported by this cache", uint32(format))
}
