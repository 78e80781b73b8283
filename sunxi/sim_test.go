package sunxi

import (
	"fmt"
)

// simMem is a Mem backed by a map of physical word addresses, standing in
// for /dev/mem in tests.
type simMem struct {
	regs map[uintptr]uint32
	maps int // Map calls that succeeded
	open int // regions not yet closed
	err  error
}

func newSimMem() *simMem {
	return &simMem{regs: map[uintptr]uint32{}}
}

func (m *simMem) Map(physAddr uintptr, size int) (Region, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.maps++
	m.open++
	return &simRegion{m: m, base: physAddr, size: size}, nil
}

// snapshot copies the current register contents.
func (m *simMem) snapshot() map[uintptr]uint32 {
	s := make(map[uintptr]uint32, len(m.regs))
	for a, v := range m.regs {
		s[a] = v
	}
	return s
}

type simRegion struct {
	m      *simMem
	base   uintptr
	size   int
	closed bool
}

func (r *simRegion) check(offset uintptr) {
	if r.closed {
		panic("access to closed region")
	}
	if offset%4 != 0 || offset+4 > uintptr(r.size) {
		panic(fmt.Sprintf("offset %#x outside of %d byte region", offset, r.size))
	}
}

func (r *simRegion) ReadWord(offset uintptr) uint32 {
	r.check(offset)
	return r.m.regs[r.base+offset]
}

func (r *simRegion) WriteWord(offset uintptr, val uint32) {
	r.check(offset)
	r.m.regs[r.base+offset] = val
}

func (r *simRegion) Close() error {
	if !r.closed {
		r.closed = true
		r.m.open--
	}
	return nil
}
