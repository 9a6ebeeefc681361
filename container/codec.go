package container

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// encodePayload applies the codec to the raw payload bytes.
func encodePayload(c Codec, payload []byte) ([]byte, error) {
	switch c {
	case CodecNone:
		return payload, nil
	case CodecLZ4:
		var buf bytes.Buffer
		zw := lz4.NewWriter(&buf)
		if _, err := zw.Write(payload); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		return buf.Bytes(), nil
	case CodecZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd compress: %w", err)
		}
		defer enc.Close()
		return enc.EncodeAll(payload, nil), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidCodec, c)
	}
}

// decodePayload reverses encodePayload. decodedLen is the expected payload
// length from the header.
func decodePayload(c Codec, stored []byte, decodedLen int) ([]byte, error) {
	switch c {
	case CodecNone:
		if len(stored) != decodedLen {
			return nil, fmt.Errorf("%w: payload is %d bytes, header says %d", ErrTruncated, len(stored), decodedLen)
		}
		return stored, nil
	case CodecLZ4:
		out := make([]byte, decodedLen)
		zr := lz4.NewReader(bytes.NewReader(stored))
		if _, err := io.ReadFull(zr, out); err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		return out, nil
	case CodecZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(stored, make([]byte, 0, decodedLen))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if len(out) != decodedLen {
			return nil, fmt.Errorf("%w: payload decoded to %d bytes, header says %d", ErrTruncated, len(out), decodedLen)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidCodec, c)
	}
}
