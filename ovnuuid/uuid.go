// Package ovnuuid provides the 128-bit logical-flow identifier used as
// the key for the conjunction-ID allocator and the logical-flow cache.
package ovnuuid

import (
	"fmt"

	"github.com/google/uuid"
)

// UUID is a 128-bit logical-flow identifier, viewed as four 32-bit parts.
// Part 0 is used by conjids as a stability hint; all 128 bits are the
// lflowcache key.
type UUID [16]byte

// Nil is the all-zero UUID. It is a valid map key but callers should not
// rely on it being rejected by conjids/lflowcache; it is just as opaque
// as any other UUID to both.
var Nil UUID

// New returns a fresh random UUID (version 4).
func New() UUID {
	id, err := uuid.NewRandom()
	if err != nil {
		// uuid.NewRandom only fails if the system RNG cannot be read,
		// which is unrecoverable for a controller process.
		panic(fmt.Sprintf("ovnuuid: failed to generate random UUID: %v", err))
	}
	return UUID(id)
}

// Parse parses the textual RFC 4122 form of a UUID.
func Parse(s string) (UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, fmt.Errorf("ovnuuid: parse %q: %w", s, err)
	}
	return UUID(id), nil
}

// Must parses s and panics on error; for use with literal UUIDs in tests
// and static tables.
func Must(s string) UUID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// FromParts builds a UUID from four 32-bit parts, the inverse of Part.
func FromParts(p0, p1, p2, p3 uint32) UUID {
	var u UUID
	putUint32(u[0:4], p0)
	putUint32(u[4:8], p1)
	putUint32(u[8:12], p2)
	putUint32(u[12:16], p3)
	return u
}

// Part returns the i'th 32-bit part (0..3) of the UUID. Part 0 is the
// stability hint used by conjids.Allocator.
func (u UUID) Part(i int) uint32 {
	if i < 0 || i > 3 {
		panic("ovnuuid: part index out of range")
	}
	off := i * 4
	return getUint32(u[off : off+4])
}

func (u UUID) String() string {
	return uuid.UUID(u).String()
}

func getUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}
