// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package probe provides simulated bus peripherals. They implement the
// tinygo.org/x/drivers bus interfaces (or io.Writer for UART) so that
// unmodified device driver code can run against them, and record the signal
// trace of every transfer.
//
// All probes are safe for concurrent use.
//
package probe

import (
	"sync"

	"github.com/db47h/sigtrace/i2c"
	"github.com/db47h/sigtrace/spi"
	"github.com/db47h/sigtrace/uart"
	"github.com/pkg/errors"
	"tinygo.org/x/drivers"
)

var (
	_ drivers.I2C = (*I2C)(nil)
	_ drivers.SPI = (*SPI)(nil)
)

// ErrRead is returned by I2C.Tx when a read is requested. The simulated bus
// only models master writes.
//
var ErrRead = errors.New("i2c reads are not supported")

// capture is a concurrency safe list of traces.
//
type capture[F any] struct {
	mu     sync.Mutex
	traces [][]F
}

func (c *capture[F]) add(fs []F) {
	c.mu.Lock()
	c.traces = append(c.traces, fs)
	c.mu.Unlock()
}

// Traces returns the recorded traces, oldest first.
//
func (c *capture[F]) Traces() [][]F {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]F(nil), c.traces...)
}

// Reset discards all recorded traces.
//
func (c *capture[F]) Reset() {
	c.mu.Lock()
	c.traces = nil
	c.mu.Unlock()
}

// I2C is a simulated I2C bus. Every byte written produces one single byte
// write transaction trace.
//
type I2C struct {
	capture[i2c.Frame]
}

// Tx implements drivers.I2C.
//
func (b *I2C) Tx(addr uint16, w, r []byte) error {
	if len(r) > 0 {
		return ErrRead
	}
	if addr > 0x7f {
		return errors.Errorf("address %#x is not a 7 bit address", addr)
	}
	if len(w) == 0 {
		return errors.Errorf("address %#x: empty write", addr)
	}
	for _, d := range w {
		b.add(i2c.Write(uint(addr), uint(d)))
	}
	return nil
}

// SPI is a simulated SPI bus. Each byte transferred produces one exchange
// trace. Peer computes the byte returned by the peripheral for every byte
// sent; if nil, the bus is a loopback.
//
type SPI struct {
	capture[spi.Frame]
	Mode spi.Mode
	Peer func(out byte) byte
}

// Transfer implements drivers.SPI.
//
func (b *SPI) Transfer(out byte) (byte, error) {
	if !b.Mode.Valid() {
		return 0, errors.Errorf("invalid SPI %s", b.Mode)
	}
	in := out
	if b.Peer != nil {
		in = b.Peer(out)
	}
	b.add(spi.Exchange(b.Mode, uint(out), uint(in)))
	return in, nil
}

// Tx implements drivers.SPI. Either w or r may be nil; if both are set they
// must have the same length. A nil w sends zeros.
//
func (b *SPI) Tx(w, r []byte) error {
	n := len(w)
	switch {
	case w == nil:
		n = len(r)
	case r != nil && len(r) != len(w):
		return errors.Errorf("write and read buffers differ in length (%d != %d)", len(w), len(r))
	}
	for i := 0; i < n; i++ {
		var out byte
		if w != nil {
			out = w[i]
		}
		in, err := b.Transfer(out)
		if err != nil {
			return err
		}
		if r != nil {
			r[i] = in
		}
	}
	return nil
}

// UART is a simulated UART transmitter.
//
type UART struct {
	capture[uart.Frame]
}

// Write implements io.Writer. It never fails.
//
func (u *UART) Write(p []byte) (int, error) {
	for _, c := range p {
		u.add(uart.Trace(uint(c)))
	}
	return len(p), nil
}

// WriteByte implements io.ByteWriter.
//
func (u *UART) WriteByte(c byte) error {
	u.add(uart.Trace(uint(c)))
	return nil
}
