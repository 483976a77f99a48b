package elf

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// ByteOrder tags the byte order of every multi-byte field in an image. The
// tag is fixed for the lifetime of a File, read once from e_ident.
type ByteOrder byte

const (
	LittleEndian ByteOrder = 1
	BigEndian    ByteOrder = 2
)

func byteOrderOf(b byte) (ByteOrder, error) {
	switch b {
	case 1:
		return LittleEndian, nil
	case 2:
		return BigEndian, nil
	}
	return 0, errors.Wrapf(ErrBadByteOrder, "byte %#x", b)
}

// Order returns the matching encoding/binary byte order.
func (bo ByteOrder) Order() binary.ByteOrder {
	if bo == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (bo ByteOrder) String() string {
	if bo == BigEndian {
		return "big endian"
	}
	return "little endian"
}

// window bounds-checks an n-byte read at off. A short buffer is an
// ErrTruncated, never a slice panic.
func window(p []byte, off, n uint64) ([]byte, error) {
	if off > uint64(len(p)) || uint64(len(p))-off < n {
		return nil, errors.Wrapf(ErrTruncated, "%d bytes at offset %#x, have %d", n, off, len(p))
	}
	return p[off : off+n], nil
}

func (bo ByteOrder) Uint16(p []byte, off uint64) (uint16, error) {
	w, err := window(p, off, 2)
	if err != nil {
		return 0, err
	}
	return bo.Order().Uint16(w), nil
}

func (bo ByteOrder) Uint32(p []byte, off uint64) (uint32, error) {
	w, err := window(p, off, 4)
	if err != nil {
		return 0, err
	}
	return bo.Order().Uint32(w), nil
}

func (bo ByteOrder) Uint64(p []byte, off uint64) (uint64, error) {
	w, err := window(p, off, 8)
	if err != nil {
		return 0, err
	}
	return bo.Order().Uint64(w), nil
}
