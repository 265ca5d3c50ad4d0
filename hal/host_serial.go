//go:build !tinygo

package hal

import (
	"context"
	"errors"
	"io"
)

// FeedRx copies r onto the simulated UART receive line until r is exhausted
// or ctx is done. A Read that is already blocked is not interrupted.
func (s *Sim) FeedRx(ctx context.Context, r io.Reader) error {
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			s.Inject(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
