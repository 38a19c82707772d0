package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
	"strings"

	"github.com/Faultbox/midgard-assets/pkg/encoding"
)

// File is one file to pack with Write.
type File struct {
	Name string
	Data []byte
}

// Write packs files into a GRF 0x200 archive. Entries are zlib-compressed and
// 8-byte aligned; names are stored EUC-KR encoded with backslashes.
func Write(w io.Writer, files []File) error {
	var body bytes.Buffer
	var table bytes.Buffer

	for _, f := range files {
		var compressed bytes.Buffer
		zw := zlib.NewWriter(&compressed)
		if _, err := zw.Write(f.Data); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return err
		}

		compressedSize := uint32(compressed.Len())
		alignedSize := (compressedSize + 7) &^ 7
		offset := uint32(body.Len())

		body.Write(compressed.Bytes())
		body.Write(make([]byte, alignedSize-compressedSize))

		table.Write(encoding.EncodeName(strings.ReplaceAll(f.Name, "/", "\\")))
		table.WriteByte(0)
		binary.Write(&table, binary.LittleEndian, compressedSize)
		binary.Write(&table, binary.LittleEndian, alignedSize)
		binary.Write(&table, binary.LittleEndian, uint32(len(f.Data)))
		table.WriteByte(flagFile)
		binary.Write(&table, binary.LittleEndian, offset)
	}

	var compressedTable bytes.Buffer
	zw := zlib.NewWriter(&compressedTable)
	if _, err := zw.Write(table.Bytes()); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	header := Header{
		TableOffset: uint32(body.Len()),
		FileCount:   uint32(len(files)) + 7, // count + seed + 7, seed is 0
		Version:     version200,
	}
	copy(header.Magic[:], grfMagic)

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, [2]uint32{uint32(compressedTable.Len()), uint32(table.Len())}); err != nil {
		return err
	}
	_, err := w.Write(compressedTable.Bytes())
	return err
}
