// Package runtime implements the process-scope owner of the HAL device
// registry (C12): Instance. A host application constructs exactly one
// Instance, registers whatever devices its drivers enumerate, and tears
// it down only after every invocation running against it has returned.
package runtime

import (
	"sync"
	"sync/atomic"

	"github.com/monkeyking/iree/hal/device"
	"github.com/monkeyking/iree/internal/ireelog"
	"github.com/monkeyking/iree/internal/status"
)

// DebugServer is the optional wire-debugging endpoint an Instance may
// own. Actual protocol support is out of scope; NoopDebugServer
// satisfies the interface for hosts that don't need one.
type DebugServer interface {
	Start() error
	Stop() error
}

// NoopDebugServer implements DebugServer with no observable behavior.
type NoopDebugServer struct{}

func (NoopDebugServer) Start() error { return nil }
func (NoopDebugServer) Stop() error  { return nil }

var uniqueID atomic.Uint32

// NextUniqueId returns a strictly increasing, process-wide 32-bit id.
// It never resets and is safe to call from any number of goroutines.
func NextUniqueId() uint32 {
	return uniqueID.Add(1)
}

// Instance owns the DeviceManager and optional DebugServer for the
// life of the process. It is not copyable: callers should hold it by
// pointer, as a value copy would split the shutdown-ordering guarantee
// across two independent zero values.
type Instance struct {
	noCopy noCopy

	mu      sync.Mutex
	devices *device.Manager
	debug   DebugServer
	closed  bool
}

// Option configures an Instance at construction time.
type Option func(*Instance)

// WithDebugServer attaches a non-default DebugServer, started
// immediately and stopped first on Shutdown.
func WithDebugServer(s DebugServer) Option {
	return func(inst *Instance) { inst.debug = s }
}

// New constructs an Instance with an empty DeviceManager.
func New(opts ...Option) (*Instance, error) {
	inst := &Instance{
		devices: device.NewManager(),
		debug:   NoopDebugServer{},
	}
	for _, opt := range opts {
		opt(inst)
	}
	if err := inst.debug.Start(); err != nil {
		return nil, status.Wrap(status.FailedPrecondition, err, "starting debug server")
	}
	ireelog.Default().Infof("runtime instance started")
	return inst, nil
}

// Devices returns the Instance's device registry.
func (inst *Instance) Devices() *device.Manager {
	return inst.devices
}

// RegisterDriverDevices enumerates every device drv can create and
// registers each one with the Instance's DeviceManager.
func (inst *Instance) RegisterDriverDevices(drv device.Driver) error {
	infos, err := drv.EnumerateAvailableDevices()
	if err != nil {
		return status.Wrap(status.KindOf(err), err, "enumerating devices for driver %q", drv.Name())
	}
	for _, info := range infos {
		dev, err := drv.CreateDevice(info)
		if err != nil {
			return status.Wrap(status.KindOf(err), err, "creating device %q from driver %q", info.ID, drv.Name())
		}
		if err := inst.devices.RegisterDevice(dev); err != nil {
			return err
		}
		ireelog.Default().Infof("registered device %q from driver %q", info.ID, drv.Name())
	}
	return nil
}

// Shutdown stops the debug server first (so it accepts no further
// events), then unregisters every device in reverse registration
// order. Callers must ensure no invocation is still running against
// any owned device before calling Shutdown. Shutdown is idempotent.
func (inst *Instance) Shutdown() error {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if inst.closed {
		return nil
	}
	inst.closed = true

	if err := inst.debug.Stop(); err != nil {
		return status.Wrap(status.FailedPrecondition, err, "stopping debug server")
	}

	devs := inst.devices.Devices()
	for i := len(devs) - 1; i >= 0; i-- {
		inst.devices.UnregisterDevice(devs[i])
	}
	ireelog.Default().Infof("runtime instance shut down")
	return nil
}

// noCopy, embedded by value, makes `go vet`'s copylocks check flag any
// accidental copy of Instance the way it already flags copied
// sync.Mutex values.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
