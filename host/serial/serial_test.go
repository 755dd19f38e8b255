package serial

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkLineEndings(t *testing.T) {
	var out bytes.Buffer
	s := NewSink(&out)

	n, err := s.Write([]byte("boot\nled=PB1\n"))
	require.NoError(t, err)
	assert.Equal(t, 13, n)

	s.Write([]byte("already\r\n"))
	s.Write([]byte("partial"))
	s.Write([]byte("\n"))

	assert.Equal(t, "boot\r\nled=PB1\r\nalready\r\npartial\r\n", out.String())
}

func TestSinkAsLogOutput(t *testing.T) {
	var out bytes.Buffer
	l := log.New(NewSink(&out), "avrsim: ", 0)

	l.Println("watchdog reset")
	assert.Equal(t, "avrsim: watchdog reset\r\n", out.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("unplugged") }

func TestSinkError(t *testing.T) {
	n, err := NewSink(failingWriter{}).Write([]byte("x\n"))
	assert.EqualError(t, err, "unplugged")
	assert.Zero(t, n)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyUSB0")
	assert.Equal(t, "/dev/ttyUSB0", cfg.Device)
	assert.Equal(t, 115200, cfg.Baud)
}

func TestOpenNilConfig(t *testing.T) {
	_, err := Open(nil)
	assert.Error(t, err)
}

func TestNativePortDevice(t *testing.T) {
	var p Port = &NativePort{cfg: DefaultConfig("/dev/ttyACM0")}
	assert.Equal(t, "/dev/ttyACM0", p.Device())
	assert.NoError(t, p.Flush())
	assert.NoError(t, p.Close())
}
