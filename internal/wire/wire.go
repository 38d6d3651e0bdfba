package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

const (
	// HeaderSize is the fixed header length. Nodes start right after it.
	HeaderSize = 24
	// Align is the alignment of the buffer start and of every node.
	Align = 8

	version byte = 1
)

var (
	ErrCorrupt = errors.New("archcache: corrupt archive")
	magic4     = [...]byte{'A', 'R', 'C', 'V'}
)

// Header layout (little endian):
//
//	magic(4) | ver(1) | flags(1) | reserved(2) | len(u32) | root(u32) | sum(u64)
//
// sum is xxhash64 over b[0:16] followed by b[24:].
const (
	offVersion  = 4
	offFlags    = 5
	offReserved = 6
	offLength   = 8
	offRoot     = 12
	offSum      = 16
)

// Seal writes the header into b[:HeaderSize] and stamps the checksum. The body
// must already be in place.
func Seal(b []byte, root uint32) {
	copy(b[:4], magic4[:])
	b[offVersion] = version
	b[offFlags] = 0
	b[offReserved], b[offReserved+1] = 0, 0
	binary.LittleEndian.PutUint32(b[offLength:], uint32(len(b)))
	binary.LittleEndian.PutUint32(b[offRoot:], root)
	binary.LittleEndian.PutUint64(b[offSum:], Checksum(b))
}

// Checksum hashes everything except the checksum field itself.
func Checksum(b []byte) uint64 {
	d := xxhash.New()
	_, _ = d.Write(b[:offSum])
	_, _ = d.Write(b[HeaderSize:])
	return d.Sum64()
}

// Root reads the root offset without any checks. Callers must only use it on
// buffers they produced themselves.
func Root(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b[offRoot:])
}

// DecodeHeader checks the header of an untrusted buffer and returns the root
// node offset. The root is only checked for range and alignment here.
func DecodeHeader(b []byte) (root uint32, err error) {
	switch {
	case len(b) < HeaderSize+Align:
		return 0, fmt.Errorf("%w: short buffer (%d bytes)", ErrCorrupt, len(b))
	case !bytes.Equal(b[:4], magic4[:]):
		return 0, fmt.Errorf("%w: bad magic", ErrCorrupt)
	case b[offVersion] != version:
		return 0, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, b[offVersion])
	case b[offFlags] != 0 || b[offReserved] != 0 || b[offReserved+1] != 0:
		return 0, fmt.Errorf("%w: reserved header bits set", ErrCorrupt)
	case len(b)%Align != 0:
		return 0, fmt.Errorf("%w: length %d not a multiple of %d", ErrCorrupt, len(b), Align)
	}

	if n := binary.LittleEndian.Uint32(b[offLength:]); uint64(n) != uint64(len(b)) {
		return 0, fmt.Errorf("%w: length field %d, buffer %d", ErrCorrupt, n, len(b))
	}
	if sum := binary.LittleEndian.Uint64(b[offSum:]); sum != Checksum(b) {
		return 0, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	root = binary.LittleEndian.Uint32(b[offRoot:])
	if root < HeaderSize || root%Align != 0 || uint64(root) >= uint64(len(b)) {
		return 0, fmt.Errorf("%w: root offset %d out of range", ErrCorrupt, root)
	}
	return root, nil
}
