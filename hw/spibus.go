// Package hw adapts a hardware SPI peripheral to the byte bus contract
// the acquisition controller drives. A whole byte is exchanged by the
// peripheral inside one tick instead of being bit-banged across many,
// but the request/complete handshake and the one-tick completion pulse
// are identical, so the controller runs unchanged on real silicon.
package hw

import (
	"tinygo.org/x/drivers"

	"bmeacq/core"
)

// SPIBus implements core.ByteBus over any drivers.SPI (a machine.SPI on
// a TinyGo target, or a mock in tests). Chip select is not part of the
// drivers.SPI contract, so the owner supplies a setter.
type SPIBus struct {
	bus   drivers.SPI
	setCS func(asserted bool)

	reqPending bool
	reqByte    uint8
	relPending bool

	cur, nxt spiOutputs
	err      error
}

type spiOutputs struct {
	done bool
	rx   uint8
}

var (
	_ core.ByteBus = (*SPIBus)(nil)
	_ core.Machine = (*SPIBus)(nil)
)

// NewSPIBus wraps bus. setCS is called with true to assert select
// (drive the pin low on an active-low device) and false to release it.
func NewSPIBus(bus drivers.SPI, setCS func(asserted bool)) *SPIBus {
	return &SPIBus{bus: bus, setCS: setCS}
}

// Idle reports whether a new transfer may be requested.
func (s *SPIBus) Idle() bool {
	return !s.reqPending && !s.cur.done
}

// Request latches a transfer; the byte is exchanged on the next tick.
func (s *SPIBus) Request(b uint8) {
	s.reqPending = true
	s.reqByte = b
}

// Release latches a chip select release.
func (s *SPIBus) Release() {
	s.relPending = true
}

// Done returns the received byte and the one-tick completion pulse.
func (s *SPIBus) Done() (uint8, bool) {
	return s.cur.rx, s.cur.done
}

// Err returns the last transfer error. The tick contract has no error
// path; a failed transfer still completes, and the caller inspects Err
// out of band.
func (s *SPIBus) Err() error {
	return s.err
}

func (s *SPIBus) Eval() {
	s.nxt = s.cur
	s.nxt.done = false

	if s.reqPending {
		s.reqPending = false
		s.relPending = false
		s.setCS(true)
		rx, err := s.bus.Transfer(s.reqByte)
		if err != nil {
			s.err = err
		}
		s.nxt.rx = rx
		s.nxt.done = true
		return
	}

	if s.relPending {
		s.relPending = false
		s.setCS(false)
	}
}

func (s *SPIBus) Latch() {
	s.cur = s.nxt
}

func (s *SPIBus) Reset() {
	s.reqPending = false
	s.relPending = false
	s.cur = spiOutputs{}
	s.nxt = s.cur
	s.err = nil
	s.setCS(false)
}
