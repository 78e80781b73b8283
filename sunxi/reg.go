package sunxi

// Window is a word-addressed view onto a block of peripheral registers.
// Offsets are in bytes from the start of the block.
type Window interface {
	ReadWord(offset uintptr) uint32
	WriteWord(offset uintptr, val uint32)
}

// Region is a Window that has to be released once the caller is done with it.
type Region interface {
	Window
	Close() error
}

// Mem opens Regions onto physical memory.
type Mem interface {
	Map(physAddr uintptr, size int) (Region, error)
}

// field describes a bit field inside a 32-bit register.
type field struct {
	offset uintptr // register offset within its block
	shift  uint
	width  uint
}

func (f field) mask() uint32 {
	return ((1 << f.width) - 1) << f.shift
}

// insert returns word with f replaced by val. Bits of val beyond the field's
// width are dropped.
func (f field) insert(word, val uint32) uint32 {
	return (word &^ f.mask()) | ((val << f.shift) & f.mask())
}

func (f field) extract(word uint32) uint32 {
	return (word & f.mask()) >> f.shift
}

func (f field) get(w Window) uint32 {
	return f.extract(w.ReadWord(f.offset))
}

func (f field) set(w Window, val uint32) {
	rmw(w, f.offset, func(word uint32) uint32 {
		return f.insert(word, val)
	})
}

// rmw reads the full register word at offset, hands it to modify and writes
// the result back as a full word.
func rmw(w Window, offset uintptr, modify func(uint32) uint32) {
	w.WriteWord(offset, modify(w.ReadWord(offset)))
}
