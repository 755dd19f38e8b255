//go:build !wasm

package serial

import (
	"time"

	"github.com/pkg/errors"
	"github.com/tarm/serial"
)

// NativePort wraps the tarm/serial implementation
type NativePort struct {
	port *serial.Port
	cfg  *Config
}

// Open opens a native serial port
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open serial port %s", cfg.Device)
	}

	return &NativePort{port: port, cfg: cfg}, nil
}

// Device returns the device path the port was opened with
func (p *NativePort) Device() string {
	return p.cfg.Device
}

func (p *NativePort) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

func (p *NativePort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Close closes the serial port
func (p *NativePort) Close() error {
	if p.port == nil {
		return nil
	}
	err := p.port.Close()
	p.port = nil
	return err
}

// Flush discards data received but not read
func (p *NativePort) Flush() error {
	if p.port == nil {
		return nil
	}
	return p.port.Flush()
}
