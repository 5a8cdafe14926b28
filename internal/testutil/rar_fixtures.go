package testutil

import (
	"encoding/binary"
	"hash/crc32"
)

// RarEntry is one file (or directory) of a generated RAR archive.
type RarEntry struct {
	Name    string // Use '\' as separator, as RAR 4 does
	Content string
	Dir     bool
}

const (
	rarBlockArchive = 0x73
	rarBlockFile    = 0x74
	rarBlockEnd     = 0x7b

	rarHasData   = 0x8000
	rarDirectory = 0x00e0
	rarSkipBlock = 0x4000

	rarHostMSDOS  = 0
	rarVersion29  = 29
	rarMethodNone = 0x30
	rarDosTime    = 0x5a210000 // 2025-01-01 00:00
)

// GenerateRar builds a RAR 4 archive holding the entries uncompressed.
func GenerateRar(entries ...RarEntry) []byte {
	out := []byte("Rar!\x1a\x07\x00")
	out = appendRarBlock(out, rarBlockArchive, 0, make([]byte, 6), nil)

	for _, e := range entries {
		content := []byte(e.Content)
		flags := uint16(rarHasData)
		attributes := uint32(0x20)
		if e.Dir {
			flags |= rarDirectory
			attributes = 0x10
		}

		body := make([]byte, 0, 25+len(e.Name))
		body = binary.LittleEndian.AppendUint32(body, uint32(len(content))) // packed
		body = binary.LittleEndian.AppendUint32(body, uint32(len(content))) // unpacked
		body = append(body, rarHostMSDOS)
		body = binary.LittleEndian.AppendUint32(body, crc32.ChecksumIEEE(content))
		body = binary.LittleEndian.AppendUint32(body, rarDosTime)
		body = append(body, rarVersion29, rarMethodNone)
		body = binary.LittleEndian.AppendUint16(body, uint16(len(e.Name)))
		body = binary.LittleEndian.AppendUint32(body, attributes)
		body = append(body, e.Name...)

		out = appendRarBlock(out, rarBlockFile, flags, body, content)
	}

	return appendRarBlock(out, rarBlockEnd, rarSkipBlock, nil, nil)
}

// appendRarBlock writes a block header, whose CRC is the low 16 bits of the
// CRC32 of everything after the CRC field, followed by the block data.
func appendRarBlock(out []byte, blockType byte, flags uint16, body, data []byte) []byte {
	header := make([]byte, 0, 5+len(body))
	header = append(header, blockType)
	header = binary.LittleEndian.AppendUint16(header, flags)
	header = binary.LittleEndian.AppendUint16(header, uint16(7+len(body)))
	header = append(header, body...)

	out = binary.LittleEndian.AppendUint16(out, uint16(crc32.ChecksumIEEE(header)))
	out = append(out, header...)
	return append(out, data...)
}
