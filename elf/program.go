package elf

import (
	"github.com/pkg/errors"
)

// SegType identifies what a program header entry describes. Values above
// SegPhdr pass through numerically: the format reserves high ranges for
// OS- and processor-specific segments, and a loader just skips them.
type SegType uint32

const (
	SegNull    SegType = 0
	SegLoad    SegType = 1
	SegDynamic SegType = 2
	SegInterp  SegType = 3
	SegNote    SegType = 4
	SegShlib   SegType = 5
	SegPhdr    SegType = 6
)

// Specific reports whether the value falls outside the named set.
func (t SegType) Specific() bool {
	return t > SegPhdr
}

func (t SegType) String() string {
	switch t {
	case SegNull:
		return "NULL"
	case SegLoad:
		return "LOAD"
	case SegDynamic:
		return "DYNAMIC"
	case SegInterp:
		return "INTERP"
	case SegNote:
		return "NOTE"
	case SegShlib:
		return "SHLIB"
	case SegPhdr:
		return "PHDR"
	}
	return "SPECIFIC"
}

// SegFlags is the segment permission triple, decoded from the low three
// bits of p_flags. Higher bits are ignored.
type SegFlags struct {
	Executable bool
	Writable   bool
	Readable   bool
}

func segFlagsOf(v uint32) SegFlags {
	return SegFlags{
		Executable: v&1 != 0,
		Writable:   v&2 != 0,
		Readable:   v&4 != 0,
	}
}

func (f SegFlags) String() string {
	s := [3]byte{'-', '-', '-'}
	if f.Readable {
		s[0] = 'r'
	}
	if f.Writable {
		s[1] = 'w'
	}
	if f.Executable {
		s[2] = 'x'
	}
	return string(s[:])
}

// ProgHeader describes one segment. Memsz may exceed Filesz; the excess is
// zero-filled by the loader, not by this decoder.
type ProgHeader struct {
	Type   SegType
	Flags  SegFlags
	Off    uint64
	Vaddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}

// ProgIter walks the program header table lazily. Construct a fresh one to
// restart; iterators share no state. A per-entry decode or validation
// failure surfaces through Err for that entry only, and the iterator still
// advances, so a caller skipping errors always terminates.
type ProgIter struct {
	data  []byte
	bo    ByteOrder
	lay   *layout
	table ProgHeaderTable

	index    uint16
	seenPhdr bool
	cur      ProgHeader
	err      error
}

// Progs returns an iterator over the program header table, or nil when the
// header records no table.
func (f *File) Progs() *ProgIter {
	if f.Header.Progs == nil {
		return nil
	}
	return &ProgIter{
		data:  f.data,
		bo:    f.Header.ByteOrder,
		lay:   f.Header.Class.layout(),
		table: *f.Header.Progs,
	}
}

// Next advances to the next entry. It returns false once the table is
// exhausted; after a true return the entry is in Header or its failure in
// Err.
func (it *ProgIter) Next() bool {
	it.cur, it.err = ProgHeader{}, nil
	if it.index >= it.table.Count {
		return false
	}
	off, _, err := it.table.EntryOffset(it.index)
	entry := it.index
	it.index++
	if err != nil {
		it.err = err
		return true
	}
	h, err := decodeProg(it.data, it.bo, it.lay, off)
	if err != nil {
		it.err = errors.Wrapf(err, "program header %d", entry)
		return true
	}
	// 0 and 1 both mean unconstrained
	if h.Align&(h.Align-1) != 0 {
		it.err = errors.Wrapf(ErrBadAlign, "program header %d: alignment %#x", entry, h.Align)
		return true
	}
	if h.Type == SegPhdr {
		if it.seenPhdr {
			it.err = errors.Wrapf(ErrManyPhdrSegs, "program header %d", entry)
			return true
		}
		it.seenPhdr = true
	}
	it.cur = h
	return true
}

// Header returns the entry decoded by the last call to Next.
func (it *ProgIter) Header() ProgHeader {
	return it.cur
}

// Err returns the decode failure for the current entry, if any.
func (it *ProgIter) Err() error {
	return it.err
}

func decodeProg(p []byte, bo ByteOrder, lay *layout, off uint64) (ProgHeader, error) {
	var h ProgHeader
	rawType, err := bo.Uint32(p, off)
	if err != nil {
		return h, err
	}
	h.Type = SegType(rawType)
	rawFlags, err := bo.Uint32(p, off+lay.pFlags)
	if err != nil {
		return h, err
	}
	h.Flags = segFlagsOf(rawFlags)
	if h.Off, err = lay.addrAt(bo, p, off+lay.pOffset); err != nil {
		return h, err
	}
	if h.Vaddr, err = lay.addrAt(bo, p, off+lay.pVaddr); err != nil {
		return h, err
	}
	if h.Filesz, err = lay.addrAt(bo, p, off+lay.pFilesz); err != nil {
		return h, err
	}
	if h.Memsz, err = lay.addrAt(bo, p, off+lay.pMemsz); err != nil {
		return h, err
	}
	if h.Align, err = lay.addrAt(bo, p, off+lay.pAlign); err != nil {
		return h, err
	}
	return h, nil
}
