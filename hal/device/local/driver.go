package local

import (
	"github.com/monkeyking/iree/bytecode"
	hostalloc "github.com/monkeyking/iree/hal/allocator/host"
	"github.com/monkeyking/iree/hal/device"
	"github.com/monkeyking/iree/internal/status"
	"github.com/monkeyking/iree/vm/interp"
	"github.com/monkeyking/iree/vm/sequencer"
)

// DriverName is the name this backend registers itself under.
const DriverName = "local-sync"

// Driver enumerates a single local device backed by module, closing
// the interpreter/sequencer construction loop itself: it builds the
// Interpreter first, wires the Device and Sequencer around it, then
// attaches the Sequencer back with Interpreter.SetSequencer.
type Driver struct {
	module   *bytecode.Module
	maxDepth int
	workers  int
}

// NewDriver returns a Driver for module. maxDepth <= 0 selects the
// interpreter's default stack depth; workers is passed to local.New,
// which only logs it (matmul runs on a single worker).
func NewDriver(module *bytecode.Module, maxDepth, workers int) *Driver {
	return &Driver{module: module, maxDepth: maxDepth, workers: workers}
}

func (d *Driver) Name() string { return DriverName }

// EnumerateAvailableDevices always reports the single synthetic local
// device this driver can create.
func (d *Driver) EnumerateAvailableDevices() ([]device.Info, error) {
	return []device.Info{{ID: "local0", Name: "local interpreter device"}}, nil
}

func (d *Driver) CreateDefaultDevice() (device.Device, error) {
	infos, _ := d.EnumerateAvailableDevices()
	return d.CreateDevice(infos[0])
}

// CreateDevice builds an Interpreter with no Sequencer, wraps it in a
// Device, builds a Sequencer against that Device's single queue, and
// finally attaches the Sequencer to the Interpreter so dispatch/hal
// opcodes the module emits can reach the queue that was just created
// from the same Interpreter.
func (d *Driver) CreateDevice(info device.Info) (device.Device, error) {
	if info.ID != "local0" {
		return nil, status.New(status.NotFound, "local driver has no device %q", info.ID)
	}
	if err := d.module.Validate(); err != nil {
		return nil, status.Wrap(status.InvalidArgument, err, "loading module for device %q", info.ID)
	}

	alloc := hostalloc.New()
	it := interp.New(d.module, alloc, nil, d.maxDepth)
	dev := New(info.ID, info.Name, d.module, alloc, it, d.workers)
	seq, err := sequencer.New(dev, 0)
	if err != nil {
		return nil, err
	}
	it.SetSequencer(seq)
	return dev, nil
}

var _ device.Driver = (*Driver)(nil)
