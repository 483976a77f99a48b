package loader

import (
	"encoding/binary"
)

// LoaderBase carries the facts every format loader reports the same way.
// Format loaders embed it and fill it at construction.
type LoaderBase struct {
	arch      string
	bits      int
	byteOrder binary.ByteOrder
	os        string
	entry     uint64
	typ       int
}

func (l *LoaderBase) Arch() string {
	return l.arch
}

func (l *LoaderBase) Bits() int {
	return l.bits
}

func (l *LoaderBase) ByteOrder() binary.ByteOrder {
	if l.byteOrder == nil {
		return binary.LittleEndian
	}
	return l.byteOrder
}

func (l *LoaderBase) OS() string {
	return l.os
}

func (l *LoaderBase) Entry() uint64 {
	return l.entry
}

func (l *LoaderBase) Type() int {
	return l.typ
}

func (l *LoaderBase) Interp() string {
	return ""
}
