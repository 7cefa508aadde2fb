// Package sink persists exported grocery list payloads.
package sink

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"github.com/natefinch/atomic"

	"github.com/MinasAbeer/grocery-list-service/internal/domain/grocerylist"
)

var _ grocerylist.Sink = (*FileSink)(nil)

// FileSink writes export payloads to files in a directory. Writes are atomic
// (write to a temp file, then rename), so a cancelled or failed save never
// leaves a partial file behind. Filenames ending in ".gz" are compressed.
type FileSink struct {
	dir string
}

// NewFileSink creates a FileSink rooted at dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// Save writes payload to filename under the sink directory. It returns the
// context error unwrapped when ctx is cancelled before the write starts, so
// callers can distinguish cancellation from failure.
func (s *FileSink) Save(ctx context.Context, filename string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if strings.HasSuffix(filename, ".gz") {
		compressed, err := compress(payload)
		if err != nil {
			return errors.Wrap(err, "compress payload")
		}
		payload = compressed
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(s.dir, filepath.Base(filename))
	if err := atomic.WriteFile(path, bytes.NewReader(payload)); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

func compress(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := pgzip.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
