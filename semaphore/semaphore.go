// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"context"
	"fmt"
	"sync"

	"github.com/segmentio/ksuid"
	"github.com/xmidt-org/cqsync/platform"
	"github.com/xmidt-org/cqsync/property"
)

// Semaphore is a binary cross-queue synchronization object.  All methods
// are safe for concurrent use from any number of queues.
type Semaphore struct {
	ctx         *platform.Context
	id          ksuid.KSUID
	props       property.List
	devices     []platform.Device
	exportTypes []uint64

	cell *cell

	lock        sync.Mutex
	refs        int
	commandRefs int
	destroyed   bool
}

// New constructs a semaphore from a creation property list.  The list is
// retained verbatim, terminator included, for later query echo.
//
// Validation happens before any state is created: a malformed list is
// ErrInvalidProperty from the property package, a device outside ctx is
// ErrInvalidDevice, requesting both export types and an import handle is
// ErrInvalidOperation, and an unknown or consumed import descriptor is
// ErrInvalidHandle.
func New(ctx *platform.Context, props property.List) (*Semaphore, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: a context is required", ErrInvalidOperation)
	}

	parsed, err := property.Parse(props)
	if err != nil {
		return nil, err
	}

	if len(parsed.ExportTypes) > 0 && parsed.ImportSyncFD != nil {
		return nil, fmt.Errorf("%w: export handle types and an import handle cannot both be requested", ErrInvalidOperation)
	}

	for _, t := range parsed.ExportTypes {
		if t != property.HandleSyncFD {
			return nil, fmt.Errorf("%w: unsupported export handle type %#x", property.ErrInvalidProperty, t)
		}
	}

	devices := make([]platform.Device, 0, len(parsed.Devices))
	for _, d := range parsed.Devices {
		dev := platform.Device(d)
		if !ctx.Has(dev) {
			return nil, fmt.Errorf("%w: device %#x", ErrInvalidDevice, d)
		}

		devices = append(devices, dev)
	}

	s := &Semaphore{
		ctx:         ctx,
		id:          ksuid.New(),
		props:       props.Clone(),
		devices:     devices,
		exportTypes: parsed.ExportTypes,
		refs:        1,
		cell:        newCell(),
	}

	if parsed.ImportSyncFD != nil {
		imported, err := claim(*parsed.ImportSyncFD)
		if err != nil {
			return nil, err
		}

		s.cell = imported
	}

	return s, nil
}

// ID returns this semaphore's unique identity.
func (s *Semaphore) ID() ksuid.KSUID {
	return s.id
}

// Type returns the semaphore type value.  Only binary semaphores exist.
func (s *Semaphore) Type() uint64 {
	return property.TypeBinary
}

// Context returns the context this semaphore was created against.
func (s *Semaphore) Context() *platform.Context {
	return s.ctx
}

// Devices returns the device handle list supplied at creation, in order.
// An empty list means the semaphore is valid on every context device.
func (s *Semaphore) Devices() []platform.Device {
	devices := make([]platform.Device, len(s.devices))
	copy(devices, s.devices)
	return devices
}

// Properties returns the creation property list exactly as supplied,
// terminator included.
func (s *Semaphore) Properties() property.List {
	return s.props.Clone()
}

// Payload returns the current payload value.
func (s *Semaphore) Payload() Payload {
	return s.cell.load()
}

// RefCount returns the external reference count: net retains minus net
// releases plus one.
func (s *Semaphore) RefCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.refs
}

// Retain atomically increments the external reference count.
func (s *Semaphore) Retain() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.destroyed {
		return ErrInvalidSemaphore
	}

	s.refs++
	return nil
}

// Release atomically decrements the external reference count.  When the
// count reaches zero, the semaphore is destroyed, except that destruction
// is deferred while enqueued commands still reference the object; the
// last such command completes the destruction.  Releasing below zero is
// ErrInvalidSemaphore.
func (s *Semaphore) Release() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.destroyed || s.refs == 0 {
		return ErrInvalidSemaphore
	}

	s.refs--
	s.reapLocked()
	return nil
}

// AddCommandRef records an in-flight command reference.  Queue commands
// referencing this semaphore hold one for their entire lifetime, keeping
// the object alive across a concurrent Release to zero.
func (s *Semaphore) AddCommandRef() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.destroyed {
		return ErrInvalidSemaphore
	}

	s.commandRefs++
	return nil
}

// DropCommandRef releases an in-flight command reference, completing any
// deferred destruction.
func (s *Semaphore) DropCommandRef() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.destroyed || s.commandRefs == 0 {
		return
	}

	s.commandRefs--
	s.reapLocked()
}

func (s *Semaphore) reapLocked() {
	if s.refs == 0 && s.commandRefs == 0 {
		s.destroyed = true
	}
}

func (s *Semaphore) valid() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.destroyed {
		return ErrInvalidSemaphore
	}

	return nil
}

// Signal transitions the payload UNSIGNALED to SIGNALED, waking every
// consumer blocked in Consume.  Signaling an already signaled semaphore
// returns ErrAlreadySignaled without touching the payload.
func (s *Semaphore) Signal() error {
	if err := s.valid(); err != nil {
		return err
	}

	return s.cell.signal()
}

// Consume blocks until the payload is SIGNALED, then atomically resets it
// to UNSIGNALED.  A payload consumed by one caller is not visible to a
// second concurrent Consume until signaled again.
func (s *Semaphore) Consume(ctx context.Context) error {
	if err := s.valid(); err != nil {
		return err
	}

	return s.cell.consume(ctx)
}
