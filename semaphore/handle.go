// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"fmt"
	"sync"

	"github.com/xmidt-org/cqsync/platform"
	"github.com/xmidt-org/cqsync/property"
)

// HandleSize is the byte size of an exported descriptor, matching a
// native int file descriptor.
const HandleSize = 4

// exported descriptors behave like OS sync file descriptors: plain
// non-negative integers whose ownership transfers on import.  The table
// is process wide, since a descriptor is meaningful outside the context
// that produced it.
var exports = struct {
	sync.Mutex
	next   uint64
	tokens map[uint64]*token
}{
	tokens: make(map[uint64]*token),
}

// token is the capability behind one exported descriptor.  Importing the
// descriptor consumes the token; the payload cell stays shared with the
// exporting semaphore from then on.
type token struct {
	cell     *cell
	consumed bool
}

// Export converts this semaphore's synchronization state into an external
// descriptor of the given handle type, valid for the given device.  The
// semaphore must have been created with a matching export handle type
// entry, otherwise ErrInvalidOperation; the device must be valid for this
// semaphore, otherwise ErrInvalidDevice.
//
// The returned descriptor is non-negative and represents the semaphore's
// payload going forward: signaling either the exporting semaphore or one
// imported from the descriptor is observable through both, until consumed.
func (s *Semaphore) Export(dev platform.Device, handleType uint64) (fd uint64, size int, err error) {
	if err := s.valid(); err != nil {
		return 0, 0, err
	}

	if !s.exportableAs(handleType) {
		return 0, 0, fmt.Errorf("%w: semaphore was not created with export handle type %#x", ErrInvalidOperation, handleType)
	}

	if !s.validOn(dev) {
		return 0, 0, fmt.Errorf("%w: device %#x", ErrInvalidDevice, uint64(dev))
	}

	exports.Lock()
	defer exports.Unlock()

	fd = exports.next
	exports.next++
	exports.tokens[fd] = &token{cell: s.cell}
	return fd, HandleSize, nil
}

func (s *Semaphore) exportableAs(handleType uint64) bool {
	for _, t := range s.exportTypes {
		if t == handleType {
			return true
		}
	}

	return false
}

// validOn tests dev against the creation device handle list, or against
// the whole context when no list was supplied.
func (s *Semaphore) validOn(dev platform.Device) bool {
	if len(s.devices) == 0 {
		return s.ctx.Has(dev)
	}

	for _, d := range s.devices {
		if d == dev {
			return true
		}
	}

	return false
}

// claim consumes the descriptor's token, transferring ownership of the
// underlying cell to the importing semaphore.
func claim(fd uint64) (*cell, error) {
	exports.Lock()
	defer exports.Unlock()

	t, ok := exports.tokens[fd]
	if !ok || t.consumed {
		return nil, fmt.Errorf("%w: descriptor %d", ErrInvalidHandle, fd)
	}

	t.consumed = true
	return t.cell, nil
}

// ImportProperties assembles a property list that adopts the given
// descriptor: binary type, the import entry, and the terminator.  It is a
// convenience for the common import flow.
func ImportProperties(fd uint64) property.List {
	return property.List{
		property.KeyType, property.TypeBinary,
		property.HandleSyncFD, fd,
		0,
	}
}
