package framework

import (
	"io"
)

// DefaultCaptureCapacity is the number of diagnostic bytes kept per feature when no capacity
// is configured.
const DefaultCaptureCapacity = 16 * 1024

const captureReadChunk = 4096

// CaptureBuffer collects the diagnostic output of a feature process.
//
// It keeps at most Cap() bytes. Anything past that is read and counted but thrown away, so a
// child that writes a lot never blocks on a full pipe. The buffer is reused between features
// with Clear; it is written only while a feature process runs, and read only after that
// process has been waited for.
type CaptureBuffer struct {
	capacity int
	content  []byte
	dropped  int64
	released bool
}

func NewCaptureBuffer(capacity int) *CaptureBuffer {
	if capacity <= 0 {
		capacity = DefaultCaptureCapacity
	}
	return &CaptureBuffer{
		capacity: capacity,
		content:  make([]byte, 0, capacity),
	}
}

// Write appends p, dropping whatever does not fit. It always reports len(p) as written.
func (b *CaptureBuffer) Write(p []byte) (int, error) {
	b.checkLive()
	room := b.capacity - len(b.content)
	if room > len(p) {
		room = len(p)
	}
	b.content = append(b.content, p[:room]...)
	b.dropped += int64(len(p) - room)
	return len(p), nil
}

// ReadFrom appends everything r produces until EOF. It returns the total number of bytes read,
// including any that were dropped.
func (b *CaptureBuffer) ReadFrom(r io.Reader) (int64, error) {
	b.checkLive()
	var total int64
	chunk := make([]byte, captureReadChunk)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			_, _ = b.Write(chunk[:n])
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

func (b *CaptureBuffer) Bytes() []byte {
	b.checkLive()
	return append([]byte(nil), b.content...)
}

func (b *CaptureBuffer) String() string {
	b.checkLive()
	return string(b.content)
}

func (b *CaptureBuffer) Len() int {
	return len(b.content)
}

func (b *CaptureBuffer) Cap() int {
	return b.capacity
}

// Dropped returns the number of bytes discarded since the last Clear.
func (b *CaptureBuffer) Dropped() int64 {
	return b.dropped
}

func (b *CaptureBuffer) Truncated() bool {
	return b.dropped > 0
}

// Clear empties the buffer but keeps its storage.
func (b *CaptureBuffer) Clear() {
	b.checkLive()
	b.content = b.content[:0]
	b.dropped = 0
}

// Release drops the buffer's storage. The buffer must not be used afterward.
func (b *CaptureBuffer) Release() {
	b.content = nil
	b.dropped = 0
	b.released = true
}

func (b *CaptureBuffer) checkLive() {
	if b.released {
		panic("framework: use of released CaptureBuffer")
	}
}
