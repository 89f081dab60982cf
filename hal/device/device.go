// Package device implements the Device/Driver/DeviceManager model (C4):
// enumeration and registration of devices, and resolution of placement
// requests across them.
package device

import (
	"github.com/monkeyking/iree/hal/allocator"
	"github.com/monkeyking/iree/hal/executable"
)

// Info describes a device a Driver can enumerate or create, independent
// of whether it is currently instantiated.
type Info struct {
	// ID is a driver-scoped identifier, e.g. "local-sync" or "local-task".
	ID string
	// Name is a human-readable device name.
	Name string
}

// Device is a single instantiated compute device: an allocator, an
// executable cache, and one or more command queues.
type Device interface {
	Info() Info
	Allocator() allocator.Allocator
	ExecutableCache() executable.Cache
	// Queue returns the command queue at the given index. Devices with
	// a single queue should accept index 0 only.
	Queue(index int) (CommandQueue, error)
	QueueCount() int
}

// Driver enumerates DeviceInfo records and creates devices.
type Driver interface {
	Name() string
	EnumerateAvailableDevices() ([]Info, error)
	CreateDefaultDevice() (Device, error)
	CreateDevice(info Info) (Device, error)
}
