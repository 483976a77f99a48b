// Package elf is a read-only decoder for the Executable and Linkable Format,
// written for images that are already resident in memory. It decodes the
// file header eagerly and exposes lazy, validated iterators over the program
// header and section header tables. It performs no I/O, never mutates the
// source buffer, and allocates nothing beyond the structures it returns.
package elf

import (
	"bytes"
	"math"

	"github.com/pkg/errors"
)

var Magic = []byte{0x7f, 0x45, 0x4c, 0x46}

// Class selects the width of every file offset and address field.
type Class byte

const (
	Class32 Class = 1
	Class64 Class = 2
)

func (c Class) Bits() int {
	if c == Class64 {
		return 64
	}
	return 32
}

func (c Class) String() string {
	if c == Class64 {
		return "ELF64"
	}
	return "ELF32"
}

// Ident is the classification prefix of an image: the two facts every other
// read depends on, decided once.
type Ident struct {
	Class     Class
	ByteOrder ByteOrder
}

// ReadIdent verifies the magic and decodes the class and byte order bytes.
// This is the single entry point; everything else in this package assumes
// it has succeeded.
func ReadIdent(p []byte) (Ident, error) {
	if len(p) < 4 || !bytes.Equal(p[:4], Magic) {
		return Ident{}, errors.Wrap(ErrNotElf, "bad magic")
	}
	id, err := window(p, 4, 2)
	if err != nil {
		return Ident{}, err
	}
	var out Ident
	switch id[0] {
	case 1:
		out.Class = Class32
	case 2:
		out.Class = Class64
	default:
		return Ident{}, errors.Wrapf(ErrBadClass, "byte %#x", id[0])
	}
	out.ByteOrder, err = byteOrderOf(id[1])
	if err != nil {
		return Ident{}, err
	}
	return out, nil
}

// layout is the width strategy: the fixed offsets of every class-dependent
// field in the file header and in program/section header entries. One
// instance per class, selected at classification time.
type layout struct {
	addr32 bool

	// file header
	entry, phoff, shoff                                  uint64
	phentsize, phnum, shentsize, shnum, shstrndx         uint64
	// program header entry sub-offsets
	pFlags, pOffset, pVaddr, pFilesz, pMemsz, pAlign     uint64
	// section header entry sub-offsets
	sFlags, sAddr, sOffset, sSize, sLink, sInfo, sAlign, sEntsize uint64
}

var layout32 = &layout{
	addr32: true,

	entry: 24, phoff: 28, shoff: 32,
	phentsize: 42, phnum: 44, shentsize: 46, shnum: 48, shstrndx: 50,

	pFlags: 24, pOffset: 4, pVaddr: 8, pFilesz: 16, pMemsz: 20, pAlign: 28,

	sFlags: 8, sAddr: 12, sOffset: 16, sSize: 20,
	sLink: 24, sInfo: 28, sAlign: 32, sEntsize: 36,
}

var layout64 = &layout{
	entry: 24, phoff: 32, shoff: 40,
	phentsize: 54, phnum: 56, shentsize: 58, shnum: 60, shstrndx: 62,

	pFlags: 4, pOffset: 8, pVaddr: 16, pFilesz: 32, pMemsz: 40, pAlign: 48,

	sFlags: 8, sAddr: 16, sOffset: 24, sSize: 32,
	sLink: 40, sInfo: 44, sAlign: 48, sEntsize: 56,
}

func (c Class) layout() *layout {
	if c == Class64 {
		return layout64
	}
	return layout32
}

// addr reads an address-width field, widened to uint64 for 32-bit images.
func (l *layout) addrAt(bo ByteOrder, p []byte, off uint64) (uint64, error) {
	if l.addr32 {
		v, err := bo.Uint32(p, off)
		return uint64(v), err
	}
	return bo.Uint64(p, off)
}

// FileType is the e_type tag: a closed enumeration, no passthrough.
type FileType uint16

const (
	Relocatable FileType = 1
	Executable  FileType = 2
	Shared      FileType = 3
	Core        FileType = 4
)

func fileTypeOf(v uint16) (FileType, error) {
	if v < 1 || v > 4 {
		return 0, &FileTypeError{Raw: v}
	}
	return FileType(v), nil
}

func (t FileType) String() string {
	switch t {
	case Relocatable:
		return "relocatable file"
	case Executable:
		return "executable file"
	case Shared:
		return "shared object"
	case Core:
		return "core file"
	}
	return "unknown"
}

// Machine is the e_machine tag. The set is closed: values outside it are a
// hard decode error, because a loader cannot do anything useful with a
// segment it cannot execute.
type Machine uint16

const (
	MachineNone    Machine = 0
	MachineSPARC   Machine = 0x02
	MachineX86     Machine = 0x03
	MachineMIPS    Machine = 0x08
	MachinePPC     Machine = 0x14
	MachineARM     Machine = 0x28
	MachineSuperH  Machine = 0x2a
	MachineIA64    Machine = 0x32
	MachineX86_64  Machine = 0x3e
	MachineAArch64 Machine = 0xb7
	MachineRISCV   Machine = 0xfe
)

var machineNames = map[Machine]string{
	MachineNone:    "none",
	MachineSPARC:   "sparc",
	MachineX86:     "x86",
	MachineMIPS:    "mips",
	MachinePPC:     "ppc",
	MachineARM:     "arm",
	MachineSuperH:  "superh",
	MachineIA64:    "ia64",
	MachineX86_64:  "x86_64",
	MachineAArch64: "arm64",
	MachineRISCV:   "riscv",
}

func machineOf(v uint16) (Machine, error) {
	m := Machine(v)
	if _, ok := machineNames[m]; !ok {
		return 0, &MachineError{Raw: v}
	}
	return m, nil
}

func (m Machine) String() string {
	if s, ok := machineNames[m]; ok {
		return s
	}
	return "unknown"
}

// ProgHeaderTable summarizes where the program header table lives in the
// image. A nil table on Header means e_phoff was the zero sentinel.
type ProgHeaderTable struct {
	Off       uint64
	EntrySize uint16
	Count     uint16
}

// EntryOffset maps an entry index to its byte offset in the image. ok is
// false past the end of the table; that is not an error. Overflowing the
// offset arithmetic is ErrTruncated, since a wrapped offset would read the
// wrong bytes.
func (t *ProgHeaderTable) EntryOffset(i uint16) (off uint64, ok bool, err error) {
	if i >= t.Count {
		return 0, false, nil
	}
	off, err = tableOffset(t.Off, t.EntrySize, i)
	return off, err == nil, err
}

// SectionHeaderTable summarizes the section header table. NamesIndex is the
// index of the section holding section names.
type SectionHeaderTable struct {
	Off        uint64
	EntrySize  uint16
	Count      uint16
	NamesIndex uint16
}

// EntryOffset has the same contract as ProgHeaderTable.EntryOffset.
func (t *SectionHeaderTable) EntryOffset(i uint16) (off uint64, ok bool, err error) {
	if i >= t.Count {
		return 0, false, nil
	}
	off, err = tableOffset(t.Off, t.EntrySize, i)
	return off, err == nil, err
}

func tableOffset(base uint64, size, i uint16) (uint64, error) {
	// size*i fits in 32 bits, only the add can overflow
	n := uint64(size) * uint64(i)
	if base > math.MaxUint64-n {
		return 0, errors.Wrapf(ErrTruncated, "table offset %#x+%#x overflows", base, n)
	}
	return base + n, nil
}

// Header is the decoded file header. It owns all of its fields and does not
// borrow the source buffer.
type Header struct {
	Class         Class
	ByteOrder     ByteOrder
	HeaderVersion byte
	OSABI         byte
	Type          FileType
	Machine       Machine
	Version       uint32
	Entry         uint64

	// Progs is nil when e_phoff is zero, the format's convention for "no
	// program headers". Legal for relocatable files; the decoder records
	// what it finds and does not enforce the correlation.
	Progs    *ProgHeaderTable
	Sections SectionHeaderTable
}

// File is a decoded view over an ELF image. The buffer is borrowed, never
// copied or mutated.
type File struct {
	Header Header

	data []byte
}

// NewFile classifies and decodes the file header of an image of either
// class.
func NewFile(p []byte) (*File, error) {
	id, err := ReadIdent(p)
	if err != nil {
		return nil, err
	}
	return newFile(p, id)
}

// NewFile32 decodes a 32-bit image, failing with ErrWrongClass on a 64-bit
// one.
func NewFile32(p []byte) (*File, error) {
	return newFileClass(p, Class32)
}

// NewFile64 decodes a 64-bit image, failing with ErrWrongClass on a 32-bit
// one.
func NewFile64(p []byte) (*File, error) {
	return newFileClass(p, Class64)
}

func newFileClass(p []byte, c Class) (*File, error) {
	id, err := ReadIdent(p)
	if err != nil {
		return nil, err
	}
	if id.Class != c {
		return nil, errors.Wrapf(ErrWrongClass, "want %s, image is %s", c, id.Class)
	}
	return newFile(p, id)
}

func newFile(p []byte, id Ident) (*File, error) {
	hdr, err := decodeHeader(p, id)
	if err != nil {
		return nil, err
	}
	return &File{Header: hdr, data: p}, nil
}

func decodeHeader(p []byte, id Ident) (Header, error) {
	var (
		hdr = Header{Class: id.Class, ByteOrder: id.ByteOrder}
		lay = id.Class.layout()
		bo  = id.ByteOrder
	)
	vers, err := window(p, 6, 2)
	if err != nil {
		return hdr, err
	}
	hdr.HeaderVersion, hdr.OSABI = vers[0], vers[1]

	rawType, err := bo.Uint16(p, 16)
	if err != nil {
		return hdr, err
	}
	if hdr.Type, err = fileTypeOf(rawType); err != nil {
		return hdr, err
	}
	rawMachine, err := bo.Uint16(p, 18)
	if err != nil {
		return hdr, err
	}
	if hdr.Machine, err = machineOf(rawMachine); err != nil {
		return hdr, err
	}
	if hdr.Version, err = bo.Uint32(p, 20); err != nil {
		return hdr, err
	}
	if hdr.Entry, err = lay.addrAt(bo, p, lay.entry); err != nil {
		return hdr, err
	}

	phoff, err := lay.addrAt(bo, p, lay.phoff)
	if err != nil {
		return hdr, err
	}
	phentsize, err := bo.Uint16(p, lay.phentsize)
	if err != nil {
		return hdr, err
	}
	phnum, err := bo.Uint16(p, lay.phnum)
	if err != nil {
		return hdr, err
	}
	if phoff != 0 {
		hdr.Progs = &ProgHeaderTable{Off: phoff, EntrySize: phentsize, Count: phnum}
	}

	shoff, err := lay.addrAt(bo, p, lay.shoff)
	if err != nil {
		return hdr, err
	}
	shentsize, err := bo.Uint16(p, lay.shentsize)
	if err != nil {
		return hdr, err
	}
	shnum, err := bo.Uint16(p, lay.shnum)
	if err != nil {
		return hdr, err
	}
	shstrndx, err := bo.Uint16(p, lay.shstrndx)
	if err != nil {
		return hdr, err
	}
	hdr.Sections = SectionHeaderTable{
		Off:        shoff,
		EntrySize:  shentsize,
		Count:      shnum,
		NamesIndex: shstrndx,
	}
	return hdr, nil
}
