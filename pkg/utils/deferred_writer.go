package utils

import (
	"bytes"
	"io"
	"sync"
)

// DeferredWriter holds writes in memory so output produced while another
// writer owns the terminal can be emitted afterwards. Safe for concurrent use.
type DeferredWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write stores data in the internal buffer.
func (d *DeferredWriter) Write(p []byte) (n int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Write(p)
}

// Len reports how many bytes are held.
func (d *DeferredWriter) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Len()
}

// Flush writes all held data to w and clears the buffer.
func (d *DeferredWriter) Flush(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.buf.Len() == 0 {
		return nil
	}

	_, err := d.buf.WriteTo(w)
	return err
}

// Discard drops everything held.
func (d *DeferredWriter) Discard() {
	d.mu.Lock()
	d.buf.Reset()
	d.mu.Unlock()
}
