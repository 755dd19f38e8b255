package serial

import (
	"bytes"
	"io"
	"sync"
)

// Port is an open serial line
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error

	// Device returns the device path the port was opened with
	Device() string
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the console settings of the ATmega328P boards
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100,
	}
}

// Sink is a line oriented log writer for a serial terminal. It turns "\n"
// into "\r\n" and writes each call in one piece, so lines from concurrent
// writers do not interleave.
type Sink struct {
	mu  sync.Mutex
	w   io.Writer
	buf []byte
}

// NewSink writes to w, typically a Port.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Write implements io.Writer. It reports len(p) on success.
func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(p)
	s.buf = s.buf[:0]
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			s.buf = append(s.buf, p...)
			break
		}
		s.buf = append(s.buf, p[:i]...)
		if i == 0 || p[i-1] != '\r' {
			s.buf = append(s.buf, '\r')
		}
		s.buf = append(s.buf, '\n')
		p = p[i+1:]
	}

	if _, err := s.w.Write(s.buf); err != nil {
		return 0, err
	}
	return n, nil
}
