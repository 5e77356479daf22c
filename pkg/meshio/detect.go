package meshio

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/philipparndt/topsurf/pkg/model"
)

const (
	binaryHeaderSize = 80
	binaryPrefixSize = binaryHeaderSize + 4
	binaryRecordSize = 50
)

// binarySize returns the exact file size of a binary STL with n triangles
func binarySize(n uint32) int64 {
	return binaryPrefixSize + binaryRecordSize*int64(n)
}

// DetectFileType determines the format from the extension and, for STL,
// from the content. A file starting with "solid" (any case) is ASCII unless its size
// matches 84 + 50*N for the triangle count N stored at offset 80.
func DetectFileType(path string) model.ModelType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return model.OBJ
	case ".stl":
		return detectSTL(path)
	default:
		return model.Unknown
	}
}

func detectSTL(path string) model.ModelType {
	file, err := os.Open(path)
	if err != nil {
		return model.Unknown
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return model.Unknown
	}

	prefix := make([]byte, binaryPrefixSize)
	n, err := io.ReadFull(file, prefix)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return model.Unknown
	}

	if n < 5 || !strings.EqualFold(string(prefix[:5]), "solid") {
		return model.STLBinary
	}

	if n == binaryPrefixSize {
		count := binary.LittleEndian.Uint32(prefix[binaryHeaderSize:])
		if info.Size() == binarySize(count) {
			return model.STLBinary
		}
	}
	return model.STLASCII
}
