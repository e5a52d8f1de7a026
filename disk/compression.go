package disk

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec selects the per-block compression of a spill channel writer. The
// codec of each block is recorded in its header, so a reader never needs
// out-of-band configuration.
type Codec byte

const (
	// CodecNone stores blocks uncompressed.
	CodecNone Codec = iota
	// CodecLZ4 compresses blocks with LZ4 (fast, modest ratio).
	CodecLZ4
	// CodecZstd compresses blocks with Zstandard (slower, better ratio).
	CodecZstd
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecLZ4:
		return "lz4"
	case CodecZstd:
		return "zstd"
	default:
		return fmt.Sprintf("codec(%d)", byte(c))
	}
}

var (
	zstdOnce sync.Once
	zstdEnc  *zstd.Encoder
	zstdDec  *zstd.Decoder
)

func zstdInit() {
	zstdOnce.Do(func() {
		zstdEnc, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		zstdDec, _ = zstd.NewReader(nil)
	})
}

// compress encodes src with the given codec. When the compressed form is
// not smaller than the input, the block is stored raw and CodecNone is
// returned, so incompressible data never grows on disk.
func compress(c Codec, src []byte) ([]byte, Codec, error) {
	switch c {
	case CodecNone:
		return src, CodecNone, nil
	case CodecLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(src)))
		n, err := lz4.CompressBlock(src, dst, nil)
		if err != nil {
			return nil, 0, err
		}
		if n == 0 || n >= len(src) {
			// Incompressible.
			return src, CodecNone, nil
		}
		return dst[:n], CodecLZ4, nil
	case CodecZstd:
		zstdInit()
		dst := zstdEnc.EncodeAll(src, nil)
		if len(dst) >= len(src) {
			return src, CodecNone, nil
		}
		return dst, CodecZstd, nil
	default:
		return nil, 0, fmt.Errorf("disk: unknown codec %d", byte(c))
	}
}

// decompress decodes a stored block back to rawLen bytes.
func decompress(c Codec, stored []byte, rawLen int) ([]byte, error) {
	switch c {
	case CodecNone:
		if len(stored) != rawLen {
			return nil, fmt.Errorf("disk: raw block is %d bytes, header says %d", len(stored), rawLen)
		}
		return stored, nil
	case CodecLZ4:
		dst := make([]byte, rawLen)
		n, err := lz4.UncompressBlock(stored, dst)
		if err != nil {
			return nil, err
		}
		if n != rawLen {
			return nil, fmt.Errorf("disk: lz4 block decoded to %d bytes, want %d", n, rawLen)
		}
		return dst, nil
	case CodecZstd:
		zstdInit()
		dst, err := zstdDec.DecodeAll(stored, make([]byte, 0, rawLen))
		if err != nil {
			return nil, err
		}
		if len(dst) != rawLen {
			return nil, fmt.Errorf("disk: zstd block decoded to %d bytes, want %d", len(dst), rawLen)
		}
		return dst, nil
	default:
		return nil, fmt.Errorf("disk: unknown codec %d in block header", byte(c))
	}
}
