package local

import (
	"sync"

	"github.com/monkeyking/iree/bytecode"
	"github.com/monkeyking/iree/hal/executable"
)

// ExecutableCache recognizes BytecodeFormat only and memoizes prepared
// executables by the payload-identity key the executable package
// defines, per the Cache contract's AllowPersistentCaching guarantee.
type ExecutableCache struct {
	module *bytecode.Module

	mu       sync.Mutex
	prepared map[executable.PayloadIdentity]*localExecutable
}

func newExecutableCache(module *bytecode.Module) *ExecutableCache {
	return &ExecutableCache{module: module, prepared: make(map[executable.PayloadIdentity]*localExecutable)}
}

// CanPrepareFormat reports whether format matches this module's own
// bytecode format.
func (c *ExecutableCache) CanPrepareFormat(format executable.Format) bool {
	return format == BytecodeFormat
}

// PrepareExecutable returns a handle to the module's already-resident
// function table; the payload bytes are expected to be (or alias) the
// module's own ExecutableTable.Payload and are not independently
// re-parsed, since this backend never left memory in the first place.
func (c *ExecutableCache) PrepareExecutable(mode executable.CachingMode, spec executable.Spec) (executable.Executable, error) {
	if !c.CanPrepareFormat(spec.Format) {
		return nil, executable.ErrUnimplementedFormat(spec.Format)
	}
	identity := executable.IdentityFor(spec)

	if mode.Has(executable.AllowPersistentCaching) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if e, ok := c.prepared[identity]; ok {
			return e, nil
		}
		e := &localExecutable{module: c.module}
		c.prepared[identity] = e
		return e, nil
	}
	return &localExecutable{module: c.module}, nil
}

type localExecutable struct {
	module *bytecode.Module
}

func (e *localExecutable) Format() executable.Format { return BytecodeFormat }

var _ executable.Cache = (*ExecutableCache)(nil)
var _ executable.Executable = (*localExecutable)(nil)
