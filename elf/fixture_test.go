package elf

// Synthetic ELF images for tests, assembled with struc. Layout numbers
// mirror real gcc output for a hello-world executable and a
// main-returns-0 relocatable object.

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/lunixbochs/struc"
)

type ehdr64 struct {
	Ident     []byte `struc:"[16]byte"`
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint64
	Phoff     uint64
	Shoff     uint64
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

type ehdr32 struct {
	Ident     []byte `struc:"[16]byte"`
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint32
	Phoff     uint32
	Shoff     uint32
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

type phdr64 struct {
	Type   uint32
	Flags  uint32
	Off    uint64
	Vaddr  uint64
	Paddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}

type phdr32 struct {
	Type   uint32
	Off    uint32
	Vaddr  uint32
	Paddr  uint32
	Filesz uint32
	Memsz  uint32
	Flags  uint32
	Align  uint32
}

type shdr64 struct {
	Name    uint32
	Type    uint32
	Flags   uint64
	Addr    uint64
	Off     uint64
	Size    uint64
	Link    uint32
	Info    uint32
	Align   uint64
	Entsize uint64
}

func elfIdent(class, order byte) []byte {
	id := make([]byte, 16)
	copy(id, Magic)
	id[4] = class
	id[5] = order
	id[6] = 1 // header version
	return id
}

func pack(t *testing.T, buf *bytes.Buffer, order binary.ByteOrder, vs ...interface{}) {
	t.Helper()
	for _, v := range vs {
		if err := struc.PackWithOrder(buf, v, order); err != nil {
			t.Fatal(err)
		}
	}
}

// reloc64 is a little-endian x86-64 relocatable object: no program header
// table, 11 sections at offset 552, names in section 1.
func reloc64(t *testing.T) []byte {
	var buf bytes.Buffer
	pack(t, &buf, binary.LittleEndian, &ehdr64{
		Ident:     elfIdent(2, 1),
		Type:      1,
		Machine:   0x3e,
		Version:   1,
		Shoff:     552,
		Ehsize:    64,
		Shentsize: 64,
		Shnum:     11,
		Shstrndx:  1,
	})
	buf.Write(make([]byte, 552-buf.Len()))

	names := "\x00.shstrtab\x00.text\x00.data\x00"
	shdrs := []*shdr64{
		{}, // SHT_NULL
		{Name: 1, Type: 3, Off: 552 + 11*64, Size: uint64(len(names)), Align: 1},
		{Name: 11, Type: 1, Flags: 6, Off: 0x40, Size: 0x17, Align: 4},
		{Type: 2, Addr: 0x1000, Off: 0x200, Size: 0x5b8, Link: 1, Info: 43, Align: 8, Entsize: 0x18},
		{Name: 17, Type: 1, Flags: 1 | 2 | 1<<13 | 1<<40, Addr: 0x404030, Off: 0x3030, Size: 8, Align: 1},
		{Type: 0x6ffffff6, Flags: 2, Addr: 0x400310, Off: 0x310, Size: 0x1c, Link: 5, Align: 8},
		{Type: 0x70000001, Off: 0x340, Size: 4, Align: 4},
		{Type: 0x80000000, Off: 0x350, Size: 4, Align: 4},
		{Type: 8, Flags: 3, Addr: 0x404040, Off: 0x3040, Size: 8, Align: 1},
		{Type: 7, Flags: 2, Addr: 0x4002c4, Off: 0x2c4, Size: 0x20, Align: 4},
		{Type: 9, Off: 0x400, Size: 0x18, Link: 3, Info: 2, Align: 8, Entsize: 0x10},
	}
	for _, sh := range shdrs {
		pack(t, &buf, binary.LittleEndian, sh)
	}
	buf.WriteString(names)
	return buf.Bytes()
}

// exec64 is a little-endian x86-64 executable with the program header
// table a real hello-world binary carries: 11 entries at offset 64, the
// first describing the table itself.
func exec64(t *testing.T) []byte {
	var buf bytes.Buffer
	pack(t, &buf, binary.LittleEndian, &ehdr64{
		Ident:     elfIdent(2, 1),
		Type:      2,
		Machine:   0x3e,
		Version:   1,
		Entry:     0x401040,
		Phoff:     64,
		Shoff:     680,
		Ehsize:    64,
		Phentsize: 56,
		Phnum:     11,
		Shentsize: 64,
		Shnum:     4,
		Shstrndx:  1,
	})
	phdrs := []*phdr64{
		{Type: 6, Flags: 4, Off: 0x40, Vaddr: 0x400040, Paddr: 0x400040, Filesz: 0x268, Memsz: 0x268, Align: 8},
		{Type: 3, Flags: 4, Off: 0x2a8, Vaddr: 0x4002a8, Paddr: 0x4002a8, Filesz: 0x1c, Memsz: 0x1c, Align: 1},
		{Type: 1, Flags: 4, Off: 0, Vaddr: 0x400000, Paddr: 0x400000, Filesz: 0x440, Memsz: 0x440, Align: 0x1000},
		{Type: 1, Flags: 5, Off: 0x1000, Vaddr: 0x401000, Paddr: 0x401000, Filesz: 0x1bd, Memsz: 0x1bd, Align: 0x1000},
		{Type: 1, Flags: 4, Off: 0x2000, Vaddr: 0x402000, Paddr: 0x402000, Filesz: 0x150, Memsz: 0x150, Align: 0x1000},
		{Type: 1, Flags: 6, Off: 0x2e00, Vaddr: 0x403e00, Paddr: 0x403e00, Filesz: 0x230, Memsz: 0x238, Align: 0x1000},
		{Type: 2, Flags: 6, Off: 0x2e10, Vaddr: 0x403e10, Paddr: 0x403e10, Filesz: 0x1e0, Memsz: 0x1e0, Align: 8},
		{Type: 4, Flags: 4, Off: 0x2c4, Vaddr: 0x4002c4, Paddr: 0x4002c4, Filesz: 0x20, Memsz: 0x20, Align: 4},
		{Type: 0x6474e550, Flags: 4, Off: 0x2010, Vaddr: 0x402010, Paddr: 0x402010, Filesz: 0x3c, Memsz: 0x3c, Align: 4},
		{Type: 0x6474e551, Flags: 6, Align: 0x10},
		{Type: 0x6474e552, Flags: 4, Off: 0x2e00, Vaddr: 0x403e00, Paddr: 0x403e00, Filesz: 0x200, Memsz: 0x200, Align: 1},
	}
	for _, ph := range phdrs {
		pack(t, &buf, binary.LittleEndian, ph)
	}

	names := "\x00.shstrtab\x00.text\x00.bss\x00"
	shdrs := []*shdr64{
		{},
		{Name: 1, Type: 3, Off: 680 + 4*64, Size: uint64(len(names)), Align: 1},
		{Name: 11, Type: 1, Flags: 6, Addr: 0x401000, Off: 0x1000, Size: 0x171, Align: 16},
		{Name: 17, Type: 8, Flags: 3, Addr: 0x404030, Off: 0x3030, Size: 8, Align: 1},
	}
	for _, sh := range shdrs {
		pack(t, &buf, binary.LittleEndian, sh)
	}
	buf.WriteString(names)
	return buf.Bytes()
}

// exec32 is a little-endian 32-bit executable: 2 program headers at offset
// 52, no sections.
func exec32(t *testing.T) []byte {
	var buf bytes.Buffer
	pack(t, &buf, binary.LittleEndian, &ehdr32{
		Ident:     elfIdent(1, 1),
		Type:      2,
		Machine:   0,
		Version:   1,
		Entry:     0x401040,
		Phoff:     52,
		Shoff:     116,
		Ehsize:    52,
		Phentsize: 32,
		Phnum:     2,
		Shentsize: 40,
		Shnum:     0,
		Shstrndx:  0,
	})
	phdrs := []*phdr32{
		{Type: 6, Off: 0x34, Vaddr: 0x400034, Paddr: 0x400034, Filesz: 0x140, Memsz: 0x140, Flags: 4, Align: 4},
		{Type: 1, Off: 0x1000, Vaddr: 0x401000, Paddr: 0x401000, Filesz: 0x1bd, Memsz: 0x1bd, Flags: 5, Align: 0x1000},
	}
	for _, ph := range phdrs {
		pack(t, &buf, binary.LittleEndian, ph)
	}
	return buf.Bytes()
}

// exec64BE is a big-endian ppc64-flavored executable with an empty section
// table, for byte order coverage.
func exec64BE(t *testing.T) []byte {
	var buf bytes.Buffer
	pack(t, &buf, binary.BigEndian, &ehdr64{
		Ident:     elfIdent(2, 2),
		Type:      2,
		Machine:   0x14,
		Version:   1,
		Entry:     0x10000000,
		Phoff:     64,
		Shoff:     120,
		Ehsize:    64,
		Phentsize: 56,
		Phnum:     1,
		Shentsize: 64,
		Shnum:     0,
		Shstrndx:  0,
	})
	pack(t, &buf, binary.BigEndian, &phdr64{
		Type: 1, Flags: 5, Off: 0, Vaddr: 0x10000000, Paddr: 0x10000000,
		Filesz: 0x100, Memsz: 0x100, Align: 0x1000,
	})
	return buf.Bytes()
}

// withPhdrs builds a 64-bit little-endian executable around an arbitrary
// program header table.
func withPhdrs(t *testing.T, phdrs ...*phdr64) []byte {
	var buf bytes.Buffer
	pack(t, &buf, binary.LittleEndian, &ehdr64{
		Ident:     elfIdent(2, 1),
		Type:      2,
		Machine:   0x3e,
		Version:   1,
		Entry:     0x401000,
		Phoff:     64,
		Shoff:     64 + uint64(len(phdrs))*56,
		Ehsize:    64,
		Phentsize: 56,
		Phnum:     uint16(len(phdrs)),
		Shentsize: 64,
		Shnum:     0,
		Shstrndx:  0,
	})
	for _, ph := range phdrs {
		pack(t, &buf, binary.LittleEndian, ph)
	}
	return buf.Bytes()
}
