package protocol

// OutputBuffer is the sink frame encoders write into.
type OutputBuffer interface {
	// Output appends data to the buffer.
	Output(data []byte)
}

// ScratchOutput is a fixed-size OutputBuffer for assembling one frame.
type ScratchOutput struct {
	buf [FrameMax]byte
	pos int
}

// NewScratchOutput creates an empty scratch buffer.
func NewScratchOutput() *ScratchOutput {
	return &ScratchOutput{}
}

func (s *ScratchOutput) Output(data []byte) {
	n := copy(s.buf[s.pos:], data)
	s.pos += n
}

// Result returns the accumulated bytes.
func (s *ScratchOutput) Result() []byte {
	return s.buf[:s.pos]
}

// Reset clears the buffer.
func (s *ScratchOutput) Reset() {
	s.pos = 0
}

// FifoBuffer is a circular byte queue between the tick loop, which
// produces frames, and the host-link writer, which drains them. Both
// run on the same goroutine; no locking.
type FifoBuffer struct {
	buf   []byte
	read  int
	write int
	size  int
}

// NewFifoBuffer creates a FifoBuffer holding up to capacity-1 bytes.
func NewFifoBuffer(capacity int) *FifoBuffer {
	return &FifoBuffer{
		buf:  make([]byte, capacity),
		size: capacity,
	}
}

// Output appends data, dropping bytes that do not fit. A full queue
// means the host link has fallen behind the measurement rate.
func (f *FifoBuffer) Output(data []byte) {
	for _, b := range data {
		nextWrite := (f.write + 1) % f.size
		if nextWrite == f.read {
			return
		}
		f.buf[f.write] = b
		f.write = nextWrite
	}
}

// Available returns the number of queued bytes.
func (f *FifoBuffer) Available() int {
	return (f.write - f.read + f.size) % f.size
}

// Read drains up to len(p) bytes into p.
func (f *FifoBuffer) Read(p []byte) int {
	n := 0
	for n < len(p) && f.read != f.write {
		p[n] = f.buf[f.read]
		f.read = (f.read + 1) % f.size
		n++
	}
	return n
}

// Reset discards all queued bytes.
func (f *FifoBuffer) Reset() {
	f.read = 0
	f.write = 0
}
