package aof

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/Le-Stef/ferrumdb/internal/protocol"
)

// Writer appends one shard's mutating commands to its AOF file. It is owned
// exclusively by that shard's executor goroutine and carries no internal
// lock on the write path; the background everysec ticker only ever calls
// Sync, never Write, so there is no data race between them.
type Writer struct {
	file   *os.File
	path   string
	policy SyncPolicy
	offset int64

	stopTicker chan struct{}
	tickerDone chan struct{}
	lastErr    atomic.Pointer[error]
}

// Open creates or appends to the AOF file at path under the given policy.
func Open(path string, policy SyncPolicy) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "aof: open %s", path)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "aof: stat %s", path)
	}

	w := &Writer{file: f, path: path, policy: policy, offset: info.Size()}
	if policy == SyncEverySecond {
		w.startTicker()
	}
	return w, nil
}

func (w *Writer) startTicker() {
	w.stopTicker = make(chan struct{})
	w.tickerDone = make(chan struct{})
	go func() {
		defer close(w.tickerDone)
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				if err := w.file.Sync(); err != nil {
					w.lastErr.Store(&err)
				}
			case <-w.stopTicker:
				return
			}
		}
	}()
}

// Append writes one command's RESP2 payload as a checksum-framed record and,
// for SyncAlways, fsyncs before returning. The caller must only call Append
// for commands that actually mutated the store.
func (w *Writer) Append(cmd protocol.Value) error {
	payload := protocol.EncodeBytes(cmd)
	record := EncodeRecord(payload)

	n, err := w.file.Write(record)
	w.offset += int64(n)
	if err != nil {
		return errors.Wrapf(err, "aof: write %s", w.path)
	}

	if w.policy == SyncAlways {
		if err := w.file.Sync(); err != nil {
			return errors.Wrapf(err, "aof: sync %s", w.path)
		}
	}
	return nil
}

// BackgroundSyncErr returns the most recent error the everysec background
// ticker observed, if any, and clears it.
func (w *Writer) BackgroundSyncErr() error {
	v := w.lastErr.Swap(nil)
	if v == nil {
		return nil
	}
	return *v
}

// Offset reports the current length of the AOF file in bytes.
func (w *Writer) Offset() int64 {
	return w.offset
}

// Flush forces an fsync regardless of policy, used on graceful shutdown.
func (w *Writer) Flush() error {
	if err := w.file.Sync(); err != nil {
		return errors.Wrapf(err, "aof: flush %s", w.path)
	}
	return nil
}

// Close stops the background ticker (if any) and closes the file.
func (w *Writer) Close() error {
	if w.stopTicker != nil {
		close(w.stopTicker)
		<-w.tickerDone
	}
	return w.file.Close()
}
