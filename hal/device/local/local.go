// Package local implements an in-process HAL device (C4/C5 reference
// backend): its command queue executes dispatches by invoking the
// bytecode interpreter directly against the resident module rather
// than talking to any real accelerator. This is the backend
// cmd/ireevm registers by default and the one the end-to-end test
// scenarios drive.
package local

import (
	"context"

	"github.com/monkeyking/iree/bytecode"
	"github.com/monkeyking/iree/hal/allocator"
	hostalloc "github.com/monkeyking/iree/hal/allocator/host"
	"github.com/monkeyking/iree/hal/buffer"
	"github.com/monkeyking/iree/hal/device"
	"github.com/monkeyking/iree/hal/executable"
	"github.com/monkeyking/iree/internal/ireelog"
	"github.com/monkeyking/iree/internal/status"
	"github.com/monkeyking/iree/vm/interp"
)

// BytecodeFormat is the executable format tag this device's cache
// recognizes: the module's own embedded bytecode, already resident in
// memory as a *bytecode.Module rather than requiring a second decode
// pass from Spec.Payload.
const BytecodeFormat executable.Format = executable.Format(bytecode.BytecodeFormatV0)

// Device is the interpreter-backed local device.
type Device struct {
	info  device.Info
	alloc allocator.Allocator
	cache *ExecutableCache
	queue *Queue
	it    *interp.Interpreter
}

// New constructs a local device named id/name, sharing alloc with the
// Interpreter it invokes (already wired to module) so buffers either
// side allocates are interchangeable. workers only appears in the
// registration log line; the interpreter runs matmul on a single
// worker regardless of it.
func New(id, name string, module *bytecode.Module, alloc allocator.Allocator, it *interp.Interpreter, workers int) *Device {
	d := &Device{
		info:  device.Info{ID: id, Name: name},
		alloc: alloc,
		cache: newExecutableCache(module),
		it:    it,
	}
	d.queue = newQueue(module, it)
	ireelog.Default().Infof("local device %q registered with %d worker(s)", id, workers)
	return d
}

// Invoke runs fn directly on the interpreter this device's queue
// dispatches through, outside of any Submit/fence bookkeeping. Host
// code wanting whole-module invocation without hand-building a
// dispatch Command uses this entry point.
func (d *Device) Invoke(ctx context.Context, fn *bytecode.FunctionDef, args []buffer.View) ([]buffer.View, error) {
	return d.it.Invoke(ctx, fn, args)
}

// NewHostBacked is a convenience constructor that allocates its own
// host-memory allocator, for callers that don't need to share one
// across multiple devices.
func NewHostBacked(id, name string, module *bytecode.Module, it *interp.Interpreter, workers int) *Device {
	return New(id, name, module, hostalloc.New(), it, workers)
}

func (d *Device) Info() device.Info                { return d.info }
func (d *Device) Allocator() allocator.Allocator    { return d.alloc }
func (d *Device) ExecutableCache() executable.Cache { return d.cache }
func (d *Device) QueueCount() int                   { return 1 }

func (d *Device) Queue(index int) (device.CommandQueue, error) {
	if index != 0 {
		return nil, status.New(status.OutOfRange, "local device has a single queue, index %d requested", index)
	}
	return d.queue, nil
}

var _ device.Device = (*Device)(nil)
