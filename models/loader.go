package models

import "encoding/binary"

const (
	UNKNOWN = iota
	EXEC
	DYN
)

// Loader is the surface a loader/mapper consumes from a decoded program
// image: enough to pick an address space layout and map segments. It does
// no mapping itself.
type Loader interface {
	Arch() string
	Bits() int
	ByteOrder() binary.ByteOrder
	OS() string
	Entry() uint64
	Type() int
	Interp() string
	Segments() ([]SegmentData, error)
}
