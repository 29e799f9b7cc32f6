package phazer

import (
	"os"
	"sync/atomic"
)

// Writer provides synchronous read / write / seek access to an
// engine's working file. It is bound to the engine that created it:
// the engine refuses to commit while any Writer remains open, so the
// working file can never be renamed out from under an open handle.
//
// Closing a Writer closes the underlying file descriptor and releases
// its hold on the engine, nothing more. It neither commits nor cleans
// up.
type Writer struct {
	file   *os.File
	engine *Phazer
	closed atomic.Bool
}

// Read implements io.Reader over the working file.
func (w *Writer) Read(p []byte) (int, error) {
	return w.file.Read(p)
}

// Write implements io.Writer over the working file.
func (w *Writer) Write(p []byte) (int, error) {
	return w.file.Write(p)
}

// Seek implements io.Seeker over the working file.
func (w *Writer) Seek(offset int64, whence int) (int64, error) {
	return w.file.Seek(offset, whence)
}

// Sync flushes the working file's contents to stable storage.
func (w *Writer) Sync() error {
	return w.file.Sync()
}

// Truncate changes the size of the working file.
func (w *Writer) Truncate(size int64) error {
	return w.file.Truncate(size)
}

// Close closes the working file handle and releases the writer's hold
// on the engine. Close is idempotent.
func (w *Writer) Close() error {
	if w.closed.Swap(true) {
		return nil
	}
	w.engine.openWriters.Add(-1)
	return w.file.Close()
}
