package elf

import (
	"fmt"

	"github.com/pkg/errors"
)

// Every decode failure bottoms out in one of these. Wrapped errors keep the
// sentinel as their cause, so callers can match with errors.Cause or
// errors.Is.
var (
	ErrNotElf       = errors.New("not an ELF file")
	ErrBadClass     = errors.New("invalid ELF class")
	ErrWrongClass   = errors.New("ELF class does not match decoder")
	ErrBadByteOrder = errors.New("invalid ELF byte order")
	ErrTruncated    = errors.New("truncated field")
	ErrBadAlign     = errors.New("segment alignment is not a power of two")
	ErrManyPhdrSegs = errors.New("more than one program header table segment")
	ErrNoStrTab     = errors.New("missing section name string table")
)

// FileTypeError reports an e_type value outside the closed enumeration.
type FileTypeError struct {
	Raw uint16
}

func (e *FileTypeError) Error() string {
	return fmt.Sprintf("invalid ELF file type %#x", e.Raw)
}

// MachineError reports an e_machine value this decoder does not recognize.
// Unknown machines are a hard error, not a passthrough.
type MachineError struct {
	Raw uint16
}

func (e *MachineError) Error() string {
	return fmt.Sprintf("invalid ELF machine %#x", e.Raw)
}

// SectionTypeError reports an sh_type value outside the named set and the
// three reserved ranges.
type SectionTypeError struct {
	Raw uint32
}

func (e *SectionTypeError) Error() string {
	return fmt.Sprintf("invalid section header type %#x", e.Raw)
}
