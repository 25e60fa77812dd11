// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"encoding/binary"
	"fmt"
)

// Param selects a field for Query.
type Param int

const (
	// ParamType is the semaphore type value (one slot).
	ParamType Param = iota

	// ParamContext is the numeric handle of the owning context (one slot).
	ParamContext

	// ParamRefCount is the external reference count (one slot).
	ParamRefCount

	// ParamDeviceHandleList is the device handle list supplied at creation
	// (one slot per device).
	ParamDeviceHandleList

	// ParamProperties is the creation property list, echoed verbatim with
	// its terminator (one slot per entry).
	ParamProperties

	// ParamPayload is the current payload value (one slot).
	ParamPayload
)

// slotSize is the byte width of one query slot.
const slotSize = 8

// Query returns the little-endian encoding of the requested field.  The
// returned length is the natural size of the value: eight bytes for a
// scalar field and eight bytes per entry for a list field.  The encoded
// value is bit-exact against the last supplied or derived field value.
func (s *Semaphore) Query(p Param) ([]byte, error) {
	if err := s.valid(); err != nil {
		return nil, err
	}

	switch p {
	case ParamType:
		return encodeSlot(s.Type()), nil

	case ParamContext:
		return encodeSlot(s.ctx.ID()), nil

	case ParamRefCount:
		return encodeSlot(uint64(s.RefCount())), nil

	case ParamDeviceHandleList:
		slots := make([]uint64, 0, len(s.devices))
		for _, d := range s.devices {
			slots = append(slots, uint64(d))
		}

		return encodeSlots(slots), nil

	case ParamProperties:
		return encodeSlots(s.props), nil

	case ParamPayload:
		return encodeSlot(uint64(s.Payload())), nil

	default:
		return nil, fmt.Errorf("%w: unknown query parameter %d", ErrInvalidOperation, p)
	}
}

func encodeSlot(v uint64) []byte {
	value := make([]byte, slotSize)
	binary.LittleEndian.PutUint64(value, v)
	return value
}

func encodeSlots(values []uint64) []byte {
	value := make([]byte, 0, slotSize*len(values))
	for _, v := range values {
		value = binary.LittleEndian.AppendUint64(value, v)
	}

	return value
}
