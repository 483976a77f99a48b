package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/mgutz/ansi"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/lunixbochs/elfload/elf"
)

var heading = ansi.ColorFunc("green+b")
var failed = ansi.ColorFunc("red")

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", strings.Repeat("-", 40))
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	if err, ok := err.(stackTracer); ok {
		for _, frame := range err.StackTrace() {
			fmt.Fprintf(os.Stderr, "%+v\n", frame)
		}
	}
}

func hex32(v *uint32) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%#x", *v)
}

func hex64(v *uint64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%#x", *v)
}

func printHeader(f *elf.File) {
	hdr := f.Header
	fmt.Println(heading("ELF header"))
	fmt.Printf("  Class:       %s\n", hdr.Class)
	fmt.Printf("  Data:        %s\n", hdr.ByteOrder)
	fmt.Printf("  Version:     %d (header %d)\n", hdr.Version, hdr.HeaderVersion)
	fmt.Printf("  OS/ABI:      %#x\n", hdr.OSABI)
	fmt.Printf("  Type:        %s\n", hdr.Type)
	fmt.Printf("  Machine:     %s\n", hdr.Machine)
	fmt.Printf("  Entry:       %#x\n", hdr.Entry)
	if hdr.Progs != nil {
		fmt.Printf("  Program headers: %d x %d bytes at %#x\n",
			hdr.Progs.Count, hdr.Progs.EntrySize, hdr.Progs.Off)
	} else {
		fmt.Println("  Program headers: none")
	}
	fmt.Printf("  Section headers: %d x %d bytes at %#x (names in %d)\n",
		hdr.Sections.Count, hdr.Sections.EntrySize, hdr.Sections.Off,
		hdr.Sections.NamesIndex)
}

func printProgs(f *elf.File) {
	fmt.Println(heading("Program headers"))
	it := f.Progs()
	if it == nil {
		fmt.Println("  none")
		return
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Type", "Flags", "Offset", "Vaddr", "Filesz", "Memsz", "Align"})
	for it.Next() {
		if err := it.Err(); err != nil {
			table.Append([]string{failed(err.Error()), "", "", "", "", "", ""})
			continue
		}
		h := it.Header()
		typ := h.Type.String()
		if h.Type.Specific() {
			typ = fmt.Sprintf("%#x", uint32(h.Type))
		}
		table.Append([]string{
			typ,
			h.Flags.String(),
			fmt.Sprintf("%#x", h.Off),
			fmt.Sprintf("%#x", h.Vaddr),
			fmt.Sprintf("%#x", h.Filesz),
			fmt.Sprintf("%#x", h.Memsz),
			fmt.Sprintf("%#x", h.Align),
		})
	}
	table.Render()
}

func printSections(f *elf.File) {
	fmt.Println(heading("Section headers"))
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "Type", "Flags", "Addr", "Offset", "Size", "Link", "Info", "Align", "Entsize"})
	it := f.Sections()
	for it.Next() {
		if err := it.Err(); err != nil {
			table.Append([]string{failed(err.Error()), "", "", "", "", "", "", "", "", ""})
			continue
		}
		h := it.Header()
		name, err := f.SectionName(h.NameIndex)
		if err != nil {
			name = fmt.Sprintf("<%d>", h.NameIndex)
		}
		table.Append([]string{
			name,
			h.Type.String(),
			h.Flags.String(),
			hex64(h.Addr),
			fmt.Sprintf("%#x", h.Off),
			fmt.Sprintf("%#x", h.Size),
			hex32(h.Link),
			hex32(h.Info),
			fmt.Sprintf("%#x", h.Align),
			hex64(h.EntSize),
		})
	}
	table.Render()
}

func main() {
	fs := flag.NewFlagSet("readelf", flag.ExitOnError)
	progs := fs.Bool("p", false, "print program headers")
	sections := fs.Bool("s", false, "print section headers")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <file>\n", os.Args[0])
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}
	p, err := ioutil.ReadFile(fs.Arg(0))
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	f, err := elf.NewFile(p)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	printHeader(f)
	if !*progs && !*sections {
		*progs, *sections = true, true
	}
	if *progs {
		printProgs(f)
	}
	if *sections {
		printSections(f)
	}
}
