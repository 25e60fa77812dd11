package platform

import "sync/atomic"

// Device is an opaque handle to a single execution device.  Device handles
// are plain integers so that they can ride inside flat property lists.
type Device uint64

var lastDevice uint64

// NewDevice allocates a fresh device handle.  Handles start at one and are
// never reused within a process, so the zero value is always invalid and
// can safely double as a list terminator.
func NewDevice() Device {
	return Device(atomic.AddUint64(&lastDevice, 1))
}

var lastContext uint64

// Context is a collection of devices that share created objects, such as
// semaphores and queues.  Objects created against one context are invalid
// on any other.  Contexts compare by identity.
type Context struct {
	id      uint64
	devices []Device
}

// NewContext constructs a context over the given devices.
func NewContext(devices ...Device) *Context {
	c := &Context{
		id:      atomic.AddUint64(&lastContext, 1),
		devices: make([]Device, len(devices)),
	}

	copy(c.devices, devices)
	return c
}

// ID returns the numeric handle of this context.
func (c *Context) ID() uint64 {
	return c.id
}

// Devices returns the devices this context was created with, in creation order.
func (c *Context) Devices() []Device {
	devices := make([]Device, len(c.devices))
	copy(devices, c.devices)
	return devices
}

// Has tests whether the given device is associated with this context.
func (c *Context) Has(d Device) bool {
	for _, candidate := range c.devices {
		if candidate == d {
			return true
		}
	}

	return false
}
