package loader

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"

	"github.com/lunixbochs/elfload/elf"
	"github.com/lunixbochs/elfload/models"
)

var machineMap = map[elf.Machine]string{
	elf.MachineX86:     "x86",
	elf.MachineX86_64:  "x86_64",
	elf.MachineARM:     "arm",
	elf.MachineAArch64: "arm64",
	elf.MachineMIPS:    "mips",
	elf.MachinePPC:     "ppc",
	elf.MachineSPARC:   "sparc",
	elf.MachineRISCV:   "riscv",
}

type ElfLoader struct {
	LoaderBase
	file *elf.File
	data []byte
}

func MatchElf(p []byte) bool {
	return bytes.HasPrefix(p, elf.Magic)
}

func NewElfLoader(p []byte) (models.Loader, error) {
	file, err := elf.NewFile(p)
	if err != nil {
		return nil, err
	}
	machineName, ok := machineMap[file.Header.Machine]
	if !ok {
		return nil, errors.Errorf("unsupported machine: %s", file.Header.Machine)
	}
	typ := models.UNKNOWN
	switch file.Header.Type {
	case elf.Executable:
		typ = models.EXEC
	case elf.Shared:
		typ = models.DYN
	}
	return &ElfLoader{
		LoaderBase: LoaderBase{
			arch:      machineName,
			bits:      file.Header.Class.Bits(),
			byteOrder: file.Header.ByteOrder.Order(),
			os:        "linux",
			entry:     file.Header.Entry,
			typ:       typ,
		},
		file: file,
		data: p,
	}, nil
}

func (e *ElfLoader) Interp() string {
	it := e.file.Progs()
	if it == nil {
		return ""
	}
	for it.Next() {
		if it.Err() != nil {
			continue
		}
		h := it.Header()
		if h.Type != elf.SegInterp {
			continue
		}
		end := h.Off + h.Filesz
		if end < h.Off || end > uint64(len(e.data)) {
			return ""
		}
		return strings.TrimRight(string(e.data[h.Off:end]), "\x00")
	}
	return ""
}

func (e *ElfLoader) segmentData(h elf.ProgHeader) func() ([]byte, error) {
	return func() ([]byte, error) {
		end := h.Off + h.Filesz
		if end < h.Off || end > uint64(len(e.data)) {
			return nil, errors.Wrapf(elf.ErrTruncated, "segment data at %#x+%#x", h.Off, h.Filesz)
		}
		// memsz past filesz is zero fill
		data := make([]byte, h.Memsz)
		copy(data, e.data[h.Off:end])
		return data, nil
	}
}

func (e *ElfLoader) Segments() ([]models.SegmentData, error) {
	it := e.file.Progs()
	if it == nil {
		return nil, nil
	}
	var segs []models.SegmentData
	for it.Next() {
		if err := it.Err(); err != nil {
			return nil, err
		}
		h := it.Header()
		if h.Type != elf.SegLoad {
			continue
		}
		var prot int
		if h.Flags.Readable {
			prot |= models.PROT_READ
		}
		if h.Flags.Writable {
			prot |= models.PROT_WRITE
		}
		if h.Flags.Executable {
			prot |= models.PROT_EXEC
		}
		segs = append(segs, models.SegmentData{
			Off:      h.Off,
			Addr:     h.Vaddr,
			Size:     h.Memsz,
			Prot:     prot,
			DataFunc: e.segmentData(h),
		})
	}
	return segs, nil
}
