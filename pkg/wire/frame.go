package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/zeebo/blake3"
)

// Frame layout, all integers big-endian:
//
//	magic       4 bytes  "VUIT"
//	format      1 byte   FormatVersion
//	compression 1 byte   Compression
//	length      4 bytes  uncompressed body length
//	digest     32 bytes  BLAKE3-256 of the uncompressed body
//	body        rest     CBOR envelope, possibly compressed
const headerSize = 4 + 1 + 1 + 4 + blake3Size

const blake3Size = 32

var magic = [4]byte{'V', 'U', 'I', 'T'}

// FormatVersion is the frame and envelope layout version written by this
// package. Readers reject any other value.
const FormatVersion byte = 1

// Compression identifies how a frame body is compressed. Values are
// protocol constants.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionZstd Compression = 1
	CompressionLZ4  Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", c)
	}
}

// ParseCompression parses a compression name as written by String.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none", "":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("wire: unknown compression %q", name)
	}
}

// Header is the fixed-size prefix of a frame.
type Header struct {
	Format      byte
	Compression Compression
	Length      int
	Digest      [blake3Size]byte
}

// maxBodyLength bounds the declared uncompressed length so a corrupt
// header cannot make the reader allocate arbitrarily.
const maxBodyLength = 64 << 20

// maxExpansion is the largest ratio an LZ4 block can expand by. Zstd
// can exceed it, so it only bounds the zstd preallocation.
const maxExpansion = 255

var errIncompressible = errors.New("wire: body does not compress")

// zstd.Encoder and zstd.Decoder are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("wire: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxBodyLength))
	if err != nil {
		panic("wire: zstd decoder initialization failed: " + err.Error())
	}
}

// seal frames body. When the requested compression does not shrink the
// body it is stored uncompressed and the header says so.
func seal(body []byte, c Compression) ([]byte, error) {
	payload, err := compress(body, c)
	if errors.Is(err, errIncompressible) {
		payload, c = body, CompressionNone
	} else if err != nil {
		return nil, err
	}

	out := make([]byte, headerSize, headerSize+len(payload))
	copy(out, magic[:])
	out[4] = FormatVersion
	out[5] = byte(c)
	binary.BigEndian.PutUint32(out[6:10], uint32(len(body)))
	digest := blake3.Sum256(body)
	copy(out[10:headerSize], digest[:])
	return append(out, payload...), nil
}

// ReadFrame validates the frame header, decompresses the body and checks
// its digest. It returns the header and the uncompressed body.
func ReadFrame(data []byte) (Header, []byte, error) {
	var h Header
	if len(data) < headerSize {
		return h, nil, fmt.Errorf("%w: %d bytes is shorter than the frame header", ErrMalformed, len(data))
	}
	if !bytes.Equal(data[:4], magic[:]) {
		return h, nil, fmt.Errorf("%w: bad magic %q", ErrMalformed, data[:4])
	}
	h.Format = data[4]
	h.Compression = Compression(data[5])
	h.Length = int(binary.BigEndian.Uint32(data[6:10]))
	copy(h.Digest[:], data[10:headerSize])

	if h.Format != FormatVersion {
		return h, nil, fmt.Errorf("%w: format %d", ErrUnsupportedFormat, h.Format)
	}
	if h.Length > maxBodyLength {
		return h, nil, fmt.Errorf("%w: declared body length %d exceeds %d", ErrMalformed, h.Length, maxBodyLength)
	}

	body, err := decompress(data[headerSize:], h.Compression, h.Length)
	if err != nil {
		return h, nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if blake3.Sum256(body) != h.Digest {
		return h, nil, fmt.Errorf("%w: body digest mismatch", ErrMalformed)
	}
	return h, body, nil
}

func compress(body []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return body, nil
	case CompressionZstd:
		out := zstdEncoder.EncodeAll(body, nil)
		if len(out) >= len(body) {
			return nil, errIncompressible
		}
		return out, nil
	case CompressionLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(body)))
		n, err := lz4.CompressBlock(body, dst, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if n == 0 || n >= len(body) {
			return nil, errIncompressible
		}
		return dst[:n], nil
	default:
		return nil, fmt.Errorf("wire: unsupported compression %s", c)
	}
}

func decompress(payload []byte, c Compression, length int) ([]byte, error) {
	switch c {
	case CompressionNone:
		if len(payload) != length {
			return nil, fmt.Errorf("body is %d bytes, header says %d", len(payload), length)
		}
		return payload, nil
	case CompressionZstd:
		out, err := zstdDecoder.DecodeAll(payload, make([]byte, 0, min(length, len(payload)*maxExpansion)))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if len(out) != length {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(out), length)
		}
		return out, nil
	case CompressionLZ4:
		if length > len(payload)*maxExpansion {
			return nil, fmt.Errorf("lz4 decompress: %d bytes cannot expand to %d", len(payload), length)
		}
		out := make([]byte, length)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if n != length {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", n, length)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown compression %s", c)
	}
}
