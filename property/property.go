/*
Package property implements the flat creation property lists used when
constructing semaphores.

A property list is an ordered sequence of uint64 slots: a key followed by
its value slots, repeated, ended by a zero terminator.  The two
variable-length keys (device handle list, export handle types) carry an
inline sublist ended by ListEnd.  Lists are echoed verbatim, terminator
included, by the semaphore query surface.
*/
package property

import (
	"errors"
	"fmt"

	"github.com/spf13/cast"
	"golang.org/x/exp/slices"
)

const (
	// KeyType introduces the semaphore type value.  A type entry is mandatory.
	KeyType uint64 = 0x10

	// KeyDeviceHandleList introduces an inline sublist of device handles,
	// ended by ListEnd.  When absent, the semaphore is valid on every
	// device of its context.
	KeyDeviceHandleList uint64 = 0x11

	// KeyExportHandleTypes introduces an inline sublist of external handle
	// types the semaphore may be exported as, ended by ListEnd.
	KeyExportHandleTypes uint64 = 0x12

	// HandleSyncFD is the sync-file style descriptor handle type.  It is
	// both a legal member of an export sublist and, used as a key, the
	// import entry whose single value is the descriptor to adopt.
	HandleSyncFD uint64 = 0x13

	// TypeBinary is the only supported semaphore type.
	TypeBinary uint64 = 0x1

	// ListEnd terminates the inline device and export-type sublists.
	ListEnd uint64 = 0
)

// ErrInvalidProperty indicates a malformed, unknown, conflicting, or
// duplicated creation property.
var ErrInvalidProperty = errors.New("invalid semaphore property")

// List is a flat, zero-terminated property list.
type List []uint64

// Clone returns an independent copy of this list.
func (l List) Clone() List {
	return List(slices.Clone(l))
}

// Equal tests two lists for exact slot-for-slot equality, terminator included.
func (l List) Equal(other List) bool {
	return slices.Equal(l, other)
}

// Append returns a new list extended with key followed by its coerced
// values.  Values may be any integral type, including platform device
// handles; coercion failures are reported as ErrInvalidProperty.
func (l List) Append(key uint64, values ...interface{}) (List, error) {
	out := l.Clone()
	out = append(out, key)

	for _, v := range values {
		u, err := cast.ToUint64E(v)
		if err != nil {
			return nil, fmt.Errorf("%w: value %v for key %#x: %s", ErrInvalidProperty, v, key, err)
		}

		out = append(out, u)
	}

	return out, nil
}

// Terminate returns this list with the trailing zero terminator appended,
// if it is not already present.
func (l List) Terminate() List {
	if n := len(l); n > 0 && l[n-1] == 0 {
		return l
	}

	out := l.Clone()
	return append(out, 0)
}

// Binary is the minimal valid list: a binary type entry and the terminator.
func Binary() List {
	return List{KeyType, TypeBinary, 0}
}

// Parsed is the decoded form of a List.
type Parsed struct {
	// Type is the semaphore type value.  Always TypeBinary after a
	// successful Parse.
	Type uint64

	// Devices are the raw device handle slots, without the ListEnd marker.
	Devices []uint64

	// ExportTypes are the requested external handle types, without the
	// ListEnd marker.
	ExportTypes []uint64

	// ImportSyncFD is the descriptor to adopt, when an import entry was
	// supplied.
	ImportSyncFD *uint64
}

// Parse validates and decodes a property list.  Unknown keys, duplicate
// keys, a missing type entry, an unsupported type, unterminated sublists,
// and a missing terminator are all ErrInvalidProperty.
func Parse(l List) (Parsed, error) {
	var (
		parsed     Parsed
		seen       = make(map[uint64]bool, 4)
		terminated bool
	)

	for i := 0; i < len(l); {
		key := l[i]
		if key == 0 {
			terminated = true
			break
		}

		if seen[key] {
			return Parsed{}, fmt.Errorf("%w: duplicate key %#x", ErrInvalidProperty, key)
		}

		seen[key] = true

		switch key {
		case KeyType:
			if i+1 >= len(l) {
				return Parsed{}, fmt.Errorf("%w: missing value for key %#x", ErrInvalidProperty, key)
			}

			parsed.Type = l[i+1]
			i += 2

		case KeyDeviceHandleList:
			sublist, next, err := parseSublist(l, i+1, key)
			if err != nil {
				return Parsed{}, err
			}

			parsed.Devices = sublist
			i = next

		case KeyExportHandleTypes:
			sublist, next, err := parseSublist(l, i+1, key)
			if err != nil {
				return Parsed{}, err
			}

			parsed.ExportTypes = sublist
			i = next

		case HandleSyncFD:
			if i+1 >= len(l) {
				return Parsed{}, fmt.Errorf("%w: missing value for key %#x", ErrInvalidProperty, key)
			}

			fd := l[i+1]
			parsed.ImportSyncFD = &fd
			i += 2

		default:
			return Parsed{}, fmt.Errorf("%w: unknown key %#x", ErrInvalidProperty, key)
		}
	}

	if !terminated {
		return Parsed{}, fmt.Errorf("%w: missing terminator", ErrInvalidProperty)
	}

	if !seen[KeyType] {
		return Parsed{}, fmt.Errorf("%w: missing mandatory type entry", ErrInvalidProperty)
	}

	if parsed.Type != TypeBinary {
		return Parsed{}, fmt.Errorf("%w: unsupported semaphore type %#x", ErrInvalidProperty, parsed.Type)
	}

	return parsed, nil
}

// parseSublist consumes slots from start until ListEnd, returning the
// sublist and the index just past the marker.
func parseSublist(l List, start int, key uint64) ([]uint64, int, error) {
	i := start
	for i < len(l) && l[i] != ListEnd {
		i++
	}

	if i >= len(l) {
		return nil, 0, fmt.Errorf("%w: unterminated sublist for key %#x", ErrInvalidProperty, key)
	}

	return slices.Clone([]uint64(l[start:i])), i + 1, nil
}
