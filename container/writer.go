package container

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hupe1980/flatvec"
)

// Write emits a container to w: header, then the stored payload. payload is
// the fully constructed buffer's bytes; root is the address of the root
// region within it. The buffer must not be appended to anymore — writing is
// the publish point of the construction phase.
func Write(w io.Writer, payload []byte, root flatvec.Address, opts ...Option) error {
	o := applyOptions(opts)
	return write(w, payload, root, o)
}

func write(w io.Writer, payload []byte, root flatvec.Address, o options) error {
	stored, err := encodePayload(o.codec, payload)
	if err != nil {
		return err
	}

	header := FileHeader{
		Magic:      MagicNumber,
		Version:    Version,
		Codec:      uint8(o.codec),
		RootKind:   uint8(o.rootKind),
		Root:       uint32(root),
		PayloadLen: uint64(len(payload)),
		StoredLen:  uint64(len(stored)),
		Checksum:   ComputeChecksum(stored),
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := w.Write(stored); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return nil
}

// Save writes a container to path atomically: the bytes go to a temp file
// in the same directory, which replaces path by rename only after a
// successful sync. ctx bounds the IO when a rate limit is configured.
func Save(ctx context.Context, path string, payload []byte, root flatvec.Address, opts ...Option) error {
	o := applyOptions(opts)

	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	_ = tmp.Chmod(0o644)

	var dst io.Writer = tmp
	if o.ioBytesPerSec > 0 {
		dst = newRateLimitedWriter(ctx, dst, o.ioBytesPerSec)
	}

	// Buffered writer to batch writes (critical for performance).
	buf := bufio.NewWriterSize(dst, 256*1024)
	if err := write(buf, payload, root, o); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	o.logger.InfoContext(ctx, "container saved",
		"path", path,
		"payload_bytes", len(payload),
		"codec", o.codec.String(),
	)

	// Success: prevent deferred cleanup from removing the final file.
	tmpName = ""
	return nil
}
