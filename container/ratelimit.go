package container

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// rateLimitedWriter wraps an io.Writer with byte-rate limiting.
type rateLimitedWriter struct {
	w       io.Writer
	limiter *rate.Limiter
	ctx     context.Context
}

func newRateLimitedWriter(ctx context.Context, w io.Writer, bytesPerSec int) *rateLimitedWriter {
	return &rateLimitedWriter{
		w:       w,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSec), bytesPerSec),
		ctx:     ctx,
	}
}

func (w *rateLimitedWriter) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		// WaitN refuses requests above the burst size, so large writes are
		// fed through in burst-sized chunks.
		chunk := len(p)
		if burst := w.limiter.Burst(); chunk > burst {
			chunk = burst
		}
		if err := w.limiter.WaitN(w.ctx, chunk); err != nil {
			return written, err
		}
		n, err := w.w.Write(p[:chunk])
		written += n
		if err != nil {
			return written, err
		}
		p = p[chunk:]
	}
	return written, nil
}
