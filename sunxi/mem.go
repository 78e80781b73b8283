package sunxi

import (
	"fmt"
	"log"
	"os"
	"unsafe"

	mmap "github.com/edsrzf/mmap-go"
	"golang.org/x/sys/unix"
)

const MEM_FILE = "/dev/mem"

// DevMem maps physical memory through a memory device file, normally /dev/mem.
type DevMem struct {
	Path string
}

// NewDevMem returns a DevMem for path, or for /dev/mem if path is empty.
func NewDevMem(path string) *DevMem {
	if path == "" {
		path = MEM_FILE
	}
	return &DevMem{Path: path}
}

// Map opens the memory device and uses mmap to map a given physical address into our address space.
// Since the mapping has to start at a page boundary, the physical address is rounded down to the
// nearest page boundary and the returned region remembers the offset of physAddr within the page.
// The device file is closed again before Map returns; the mapping stays valid until Close.
func (dm *DevMem) Map(physAddr uintptr, size int) (Region, error) {
	f, err := os.OpenFile(dm.Path, os.O_RDWR|unix.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("couldn't open %s: %w", dm.Path, err)
	}
	defer f.Close() // Ignore error

	pageSize := uintptr(unix.Getpagesize())
	pagemask := ^(pageSize - 1)
	mapAddr := physAddr & pagemask
	size += int(physAddr - mapAddr)
	log.Printf("MapRegion(%s, %d, RDWR, 0, %08X), physAddr %08X\n", dm.Path, size, mapAddr, physAddr)
	mm, err := mmap.MapRegion(f, size, mmap.RDWR, 0, int64(mapAddr))
	if err != nil {
		return nil, fmt.Errorf("couldn't map region (%08X, %d): %w", physAddr, size, err)
	}
	return &mappedRegion{buf: mm, offs: physAddr - mapAddr}, nil
}

type mappedRegion struct {
	buf  mmap.MMap
	offs uintptr
}

// word returns a pointer to the register at offset so that every access is a
// single aligned 32-bit load or store. The SoCs we drive are little-endian, so
// native order is register order.
func (r *mappedRegion) word(offset uintptr) *uint32 {
	i := r.offs + offset
	if i%4 != 0 || i+4 > uintptr(len(r.buf)) {
		panic(fmt.Sprintf("register offset %#x outside of or misaligned in %d byte mapping", offset, len(r.buf)))
	}
	return (*uint32)(unsafe.Pointer(&r.buf[i]))
}

func (r *mappedRegion) ReadWord(offset uintptr) uint32 {
	return *r.word(offset)
}

func (r *mappedRegion) WriteWord(offset uintptr, val uint32) {
	*r.word(offset) = val
}

func (r *mappedRegion) Close() error {
	if r.buf == nil {
		return nil
	}
	err := r.buf.Unmap()
	r.buf = nil
	return err
}
