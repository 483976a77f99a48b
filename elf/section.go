package elf

import (
	"bytes"

	"github.com/pkg/errors"
)

// SectionType is the sh_type tag: seventeen named values plus three
// reserved numeric ranges. Anything else is a hard decode error.
type SectionType uint32

const (
	SecNull         SectionType = 0
	SecProgBits     SectionType = 1
	SecSymTab       SectionType = 2
	SecStrTab       SectionType = 3
	SecRelA         SectionType = 4
	SecHash         SectionType = 5
	SecDynamic      SectionType = 6
	SecNote         SectionType = 7
	SecNoBits       SectionType = 8
	SecRel          SectionType = 9
	SecShLib        SectionType = 10
	SecDynSym       SectionType = 11
	SecInitArray    SectionType = 14
	SecFiniArray    SectionType = 15
	SecPreinitArray SectionType = 16
	SecGroup        SectionType = 17
	SecSymTabIndex  SectionType = 18
)

// Reserved ranges. OS: 0x60000000..0x6fffffff, processor:
// 0x70000000..0x7fffffff, user application: 0x80000000..0xffffffff.
const (
	secLoOS   = 0x60000000
	secHiOS   = 0x6fffffff
	secLoProc = 0x70000000
	secHiProc = 0x7fffffff
	secLoUser = 0x80000000
)

func sectionTypeOf(v uint32) (SectionType, error) {
	switch {
	case v <= 11 || (v >= 14 && v <= 18):
		return SectionType(v), nil
	case v >= secLoOS && v <= secHiOS:
		return SectionType(v), nil
	case v >= secLoProc && v <= secHiProc:
		return SectionType(v), nil
	case v >= secLoUser:
		return SectionType(v), nil
	}
	return 0, &SectionTypeError{Raw: v}
}

// OSSpecific reports whether the value lies in the OS-reserved range.
func (t SectionType) OSSpecific() bool { return t >= secLoOS && t <= secHiOS }

// ProcSpecific reports whether the value lies in the processor-reserved
// range.
func (t SectionType) ProcSpecific() bool { return t >= secLoProc && t <= secHiProc }

// UserSpecific reports whether the value lies in the application-reserved
// range.
func (t SectionType) UserSpecific() bool { return t >= secLoUser }

func (t SectionType) String() string {
	switch t {
	case SecNull:
		return "NULL"
	case SecProgBits:
		return "PROGBITS"
	case SecSymTab:
		return "SYMTAB"
	case SecStrTab:
		return "STRTAB"
	case SecRelA:
		return "RELA"
	case SecHash:
		return "HASH"
	case SecDynamic:
		return "DYNAMIC"
	case SecNote:
		return "NOTE"
	case SecNoBits:
		return "NOBITS"
	case SecRel:
		return "REL"
	case SecShLib:
		return "SHLIB"
	case SecDynSym:
		return "DYNSYM"
	case SecInitArray:
		return "INIT_ARRAY"
	case SecFiniArray:
		return "FINI_ARRAY"
	case SecPreinitArray:
		return "PREINIT_ARRAY"
	case SecGroup:
		return "GROUP"
	case SecSymTabIndex:
		return "SYMTAB_SHNDX"
	}
	switch {
	case t.OSSpecific():
		return "OS"
	case t.ProcSpecific():
		return "PROC"
	}
	return "USER"
}

// SectionFlags is the sh_flags bit set. Unknown bits are dropped at decode
// time rather than rejected; only the bits below survive.
type SectionFlags uint64

const (
	SecFlagWrite           SectionFlags = 1 << 0
	SecFlagAlloc           SectionFlags = 1 << 1
	SecFlagExecInstr       SectionFlags = 1 << 2
	SecFlagMerge           SectionFlags = 1 << 4
	SecFlagStrings         SectionFlags = 1 << 5
	SecFlagInfoLink        SectionFlags = 1 << 6
	SecFlagLinkOrder       SectionFlags = 1 << 7
	SecFlagOSNonconforming SectionFlags = 1 << 8
	SecFlagGroup           SectionFlags = 1 << 9
	SecFlagTLS             SectionFlags = 1 << 10
	SecFlagCompressed      SectionFlags = 1 << 11

	SecMaskOS   SectionFlags = 0xff000000
	SecMaskProc SectionFlags = 0xf0000000
)

const secFlagsKnown = SecFlagWrite | SecFlagAlloc | SecFlagExecInstr |
	SecFlagMerge | SecFlagStrings | SecFlagInfoLink | SecFlagLinkOrder |
	SecFlagOSNonconforming | SecFlagGroup | SecFlagTLS | SecFlagCompressed |
	SecMaskOS | SecMaskProc

func secFlagsOf(v uint64) SectionFlags {
	return SectionFlags(v) & secFlagsKnown
}

// Has reports whether every bit in mask is set.
func (f SectionFlags) Has(mask SectionFlags) bool {
	return f&mask == mask
}

func (f SectionFlags) String() string {
	var s []byte
	for _, b := range []struct {
		flag SectionFlags
		c    byte
	}{
		{SecFlagWrite, 'W'},
		{SecFlagAlloc, 'A'},
		{SecFlagExecInstr, 'X'},
		{SecFlagMerge, 'M'},
		{SecFlagStrings, 'S'},
		{SecFlagInfoLink, 'I'},
		{SecFlagLinkOrder, 'L'},
		{SecFlagOSNonconforming, 'O'},
		{SecFlagGroup, 'G'},
		{SecFlagTLS, 'T'},
		{SecFlagCompressed, 'C'},
	} {
		if f&b.flag != 0 {
			s = append(s, b.c)
		}
	}
	return string(s)
}

// SectionHeader describes one section. Addr, Link, Info and EntSize use the
// format's zero-means-absent convention; they are nil when the encoded
// value was zero, so "address zero" can never be confused with "no
// address".
type SectionHeader struct {
	NameIndex uint32
	Type      SectionType
	Flags     SectionFlags
	Addr      *uint64
	Off       uint64
	Size      uint64
	Link      *uint32
	Info      *uint32
	Align     uint64
	EntSize   *uint64
}

// SectionIter walks the section header table with the same contract as
// ProgIter: lazy, restartable, always advancing. Sections carry no
// alignment or duplicate validation; section alignment is advisory to
// tooling, not safety-critical to a loader.
type SectionIter struct {
	data  []byte
	bo    ByteOrder
	lay   *layout
	table SectionHeaderTable

	index uint16
	cur   SectionHeader
	err   error
}

// Sections returns an iterator over the section header table. The table
// summary is always present; it may describe zero entries.
func (f *File) Sections() *SectionIter {
	return &SectionIter{
		data:  f.data,
		bo:    f.Header.ByteOrder,
		lay:   f.Header.Class.layout(),
		table: f.Header.Sections,
	}
}

func (it *SectionIter) Next() bool {
	it.cur, it.err = SectionHeader{}, nil
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
	h, err := decodeSection(it.data, it.bo, it.lay, off)
	if err != nil {
		it.err = errors.Wrapf(err, "section header %d", entry)
		return true
	}
	it.cur = h
	return true
}

func (it *SectionIter) Header() SectionHeader {
	return it.cur
}

func (it *SectionIter) Err() error {
	return it.err
}

func decodeSection(p []byte, bo ByteOrder, lay *layout, off uint64) (SectionHeader, error) {
	var h SectionHeader
	var err error
	if h.NameIndex, err = bo.Uint32(p, off); err != nil {
		return h, err
	}
	rawType, err := bo.Uint32(p, off+4)
	if err != nil {
		return h, err
	}
	if h.Type, err = sectionTypeOf(rawType); err != nil {
		return h, err
	}
	rawFlags, err := lay.addrAt(bo, p, off+lay.sFlags)
	if err != nil {
		return h, err
	}
	h.Flags = secFlagsOf(rawFlags)
	addr, err := lay.addrAt(bo, p, off+lay.sAddr)
	if err != nil {
		return h, err
	}
	h.Addr = optUint64(addr)
	if h.Off, err = lay.addrAt(bo, p, off+lay.sOffset); err != nil {
		return h, err
	}
	if h.Size, err = lay.addrAt(bo, p, off+lay.sSize); err != nil {
		return h, err
	}
	link, err := bo.Uint32(p, off+lay.sLink)
	if err != nil {
		return h, err
	}
	h.Link = optUint32(link)
	info, err := bo.Uint32(p, off+lay.sInfo)
	if err != nil {
		return h, err
	}
	h.Info = optUint32(info)
	if h.Align, err = lay.addrAt(bo, p, off+lay.sAlign); err != nil {
		return h, err
	}
	entsize, err := lay.addrAt(bo, p, off+lay.sEntsize)
	if err != nil {
		return h, err
	}
	h.EntSize = optUint64(entsize)
	return h, nil
}

func optUint64(v uint64) *uint64 {
	if v == 0 {
		return nil
	}
	return &v
}

func optUint32(v uint32) *uint32 {
	if v == 0 {
		return nil
	}
	return &v
}

// SectionName resolves a section name index through the string table
// section named by the header's NamesIndex.
func (f *File) SectionName(nameIndex uint32) (string, error) {
	tbl := f.Header.Sections
	if tbl.Count == 0 || tbl.NamesIndex >= tbl.Count {
		return "", errors.Wrapf(ErrNoStrTab, "names index %d of %d sections", tbl.NamesIndex, tbl.Count)
	}
	off, _, err := tbl.EntryOffset(tbl.NamesIndex)
	if err != nil {
		return "", err
	}
	sh, err := decodeSection(f.data, f.Header.ByteOrder, f.Header.Class.layout(), off)
	if err != nil {
		return "", err
	}
	if sh.Type != SecStrTab {
		return "", errors.Wrapf(ErrNoStrTab, "section %d is %s, not STRTAB", tbl.NamesIndex, sh.Type)
	}
	if uint64(nameIndex) >= sh.Size {
		return "", errors.Wrapf(ErrTruncated, "name index %d past string table size %d", nameIndex, sh.Size)
	}
	strs, err := window(f.data, sh.Off, sh.Size)
	if err != nil {
		return "", err
	}
	name := strs[nameIndex:]
	end := bytes.IndexByte(name, 0)
	if end < 0 {
		return "", errors.Wrap(ErrTruncated, "unterminated section name")
	}
	return string(name[:end]), nil
}
