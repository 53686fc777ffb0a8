package llvm

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// encodeNote encodes one ELF note entry in little endian.
func encodeNote(name string, typ uint32, desc []byte) []byte {
	var buf bytes.Buffer
	nameBytes := append([]byte(name), 0)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(nameBytes)))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(desc)))
	_ = binary.Write(&buf, binary.LittleEndian, typ)
	buf.Write(nameBytes)
	buf.Write(make([]byte, align4(len(nameBytes))-len(nameBytes)))
	buf.Write(desc)
	buf.Write(make([]byte, align4(len(desc))-len(desc)))
	return buf.Bytes()
}

// buildCodeObject returns a minimal ELF64 with a single note section.
func buildCodeObject(t *testing.T, machine elf.Machine, notes []byte) []byte {
	t.Helper()

	const headerSize = 64
	noteEnd := headerSize + len(notes)
	shoff := (noteEnd + 7) &^ 7

	hdr := elf.Header64{
		Type:      uint16(elf.ET_DYN),
		Machine:   uint16(machine),
		Version:   uint32(elf.EV_CURRENT),
		Shoff:     uint64(shoff),
		Ehsize:    headerSize,
		Shentsize: 64,
		Shnum:     2,
	}
	copy(hdr.Ident[:], elf.ELFMAG)
	hdr.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	hdr.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	hdr.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	hdr.Ident[elf.EI_OSABI] = 64 // ELFOSABI_AMDGPU_HSA

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, hdr))
	buf.Write(notes)
	buf.Write(make([]byte, shoff-noteEnd))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, elf.Section64{}))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, elf.Section64{
		Type:      uint32(elf.SHT_NOTE),
		Off:       headerSize,
		Size:      uint64(len(notes)),
		Addralign: 4,
	}))

	return buf.Bytes()
}

// fakeObjdump writes an executable shell script standing in for llvm-objdump.
func fakeObjdump(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "llvm-objdump")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}
