// Bus engine
// Synchronous serial (SPI-style) master implemented as a tick-driven
// state machine: clock generation at a configured divisor of the tick
// rate, mode-correct bit shifting, and a one-tick completion pulse per
// full-duplex byte transfer.
package core

import "fmt"

// ByteBus is the request/complete contract the acquisition controller
// drives. BusEngine implements it at pin level; hw.SPIBus implements it
// over a hardware SPI peripheral.
type ByteBus interface {
	// Idle reports whether a new transfer may be requested.
	Idle() bool

	// Request begins a full-duplex transfer of b. Legal only while
	// idle; the bus does not defend against violations beyond dropping
	// the request.
	Request(b uint8)

	// Release deasserts chip select. Legal only while idle; whether
	// select is held across the transfers of a burst is the caller's
	// decision.
	Release()

	// Done returns the received byte and a pulse that is true for
	// exactly one tick per completed transfer.
	Done() (uint8, bool)
}

// BusConfig holds the construction-time bus engine configuration.
// None of it is runtime mutable.
type BusConfig struct {
	TickRate uint32 // system tick rate in Hz
	BusRate  uint32 // target bus clock rate in Hz
	Mode     uint8  // SPI mode 0-3 (CPOL in bit 1, CPHA in bit 0)
	Width    uint8  // transfer width in bits, 0 means 8
}

type busState uint8

const (
	busIdle busState = iota
	busTransferring
	busComplete
)

// BusEngine generates the bus clock and shifts bytes in and out on the
// edges dictated by the configured mode. It drives SCLK, MOSI and CSN;
// MISO is driven by the bus partner.
//
// State machine: IDLE -> TRANSFERRING -> COMPLETE(1 tick) -> IDLE.
type BusEngine struct {
	wires *Wires
	cfg   BusConfig

	halfTicks uint32 // ticks per clock half-period
	cpol      bool   // clock idle level
	cpha      bool   // sample on trailing edge when set

	// Request inputs latched from the caller's Eval phase.
	reqPending bool
	reqByte    uint8
	relPending bool

	state       busState
	halfCtr     uint32
	edgeCount   uint8 // 0 .. 2*width
	txShift     uint32
	txBit       uint8 // next tx bit index to present (counts down)
	rxShift     uint32
	bitsSampled uint8
	sampleNow   bool // a sample edge was emitted last tick

	// Registered outputs: nxt is computed in Eval, cur published in
	// Latch.
	cur, nxt busOutputs
}

type busOutputs struct {
	sclk bool
	mosi bool
	csn  bool
	done bool
	rx   uint8
}

// NewBusEngine validates the configuration and returns an engine wired
// to the shared signals. Malformed configuration is a construction-time
// error, never a runtime discovery.
func NewBusEngine(wires *Wires, cfg BusConfig) (*BusEngine, error) {
	if cfg.Width == 0 {
		cfg.Width = 8
	}
	if cfg.TickRate == 0 || cfg.BusRate == 0 {
		return nil, fmt.Errorf("bus engine: tick rate and bus rate must be nonzero")
	}
	if cfg.BusRate*2 > cfg.TickRate {
		return nil, fmt.Errorf("bus engine: bus rate %d exceeds half the tick rate %d", cfg.BusRate, cfg.TickRate)
	}
	if cfg.Mode > 3 {
		return nil, fmt.Errorf("bus engine: invalid mode %d", cfg.Mode)
	}
	if cfg.Width > 8 {
		return nil, fmt.Errorf("bus engine: invalid width %d", cfg.Width)
	}

	e := &BusEngine{
		wires:     wires,
		cfg:       cfg,
		halfTicks: cfg.TickRate / (2 * cfg.BusRate),
		cpol:      cfg.Mode&0x2 != 0,
		cpha:      cfg.Mode&0x1 != 0,
	}
	e.Reset()
	return e, nil
}

// Config returns the construction-time configuration.
func (e *BusEngine) Config() BusConfig {
	return e.cfg
}

// Idle reports whether the engine can accept a new transfer request.
func (e *BusEngine) Idle() bool {
	return e.state == busIdle && !e.reqPending
}

// Request latches a transfer request; the engine observes it on the
// next tick boundary. A request made while a transfer is pending is
// dropped, never queued.
func (e *BusEngine) Request(b uint8) {
	e.reqPending = true
	e.reqByte = b
}

// Release latches a chip select release; applied once the engine is
// idle.
func (e *BusEngine) Release() {
	e.relPending = true
}

// Done returns the last received byte and the completion pulse. The
// pulse is high for exactly one tick per requested transfer.
func (e *BusEngine) Done() (uint8, bool) {
	return e.cur.rx, e.cur.done
}

// Eval advances the engine by one tick. Inputs (MISO, latched
// requests) are read as left by the previous Latch phase.
func (e *BusEngine) Eval() {
	e.nxt = e.cur
	e.nxt.done = false

	switch e.state {
	case busIdle:
		if e.reqPending {
			e.reqPending = false
			e.relPending = false
			e.state = busTransferring
			e.txShift = uint32(e.reqByte)
			e.rxShift = 0
			e.bitsSampled = 0
			e.edgeCount = 0
			e.halfCtr = e.halfTicks
			e.sampleNow = false
			e.txBit = e.cfg.Width
			e.nxt.csn = false
			if !e.cpha {
				// Mode 0/2: first bit must be valid before the
				// leading edge.
				e.presentNextBit()
			}
		} else if e.relPending {
			e.relPending = false
			e.nxt.csn = true
		}

	case busTransferring:
		// A request arriving mid-transfer is undefined input; drop it.
		e.reqPending = false

		if e.sampleNow {
			// The sample edge is visible to the partner now; its data
			// line is stable around it.
			e.sampleNow = false
			e.rxShift = e.rxShift<<1 | b2u(e.wires.MISO)
			e.bitsSampled++
		}

		if e.edgeCount < 2*e.cfg.Width {
			e.halfCtr--
			if e.halfCtr == 0 {
				e.halfCtr = e.halfTicks
				e.edgeCount++
				e.nxt.sclk = !e.cur.sclk
				leading := e.edgeCount%2 == 1
				if leading != e.cpha {
					// Sample edge: capture MISO on the next tick, once
					// the edge is externally visible.
					e.sampleNow = true
				} else {
					e.presentNextBit()
				}
			}
		} else if !e.sampleNow && e.bitsSampled == e.cfg.Width {
			e.state = busComplete
			e.nxt.done = true
			e.nxt.rx = uint8(e.rxShift)
		}

	case busComplete:
		e.reqPending = false
		e.state = busIdle

	default:
		// Impossible state guard.
		e.reqPending = false
		e.state = busIdle
	}
}

// presentNextBit shifts the next outgoing bit, MSB first, onto MOSI.
func (e *BusEngine) presentNextBit() {
	if e.txBit == 0 {
		return
	}
	e.txBit--
	e.nxt.mosi = e.txShift>>e.txBit&1 != 0
}

// Latch publishes the outputs computed by Eval onto the shared wires.
func (e *BusEngine) Latch() {
	e.cur = e.nxt
	e.wires.SCLK = e.cur.sclk
	e.wires.MOSI = e.cur.mosi
	e.wires.CSN = e.cur.csn
}

// Reset unconditionally returns the engine to IDLE with select
// deasserted and the clock at its configured idle level.
func (e *BusEngine) Reset() {
	e.reqPending = false
	e.relPending = false
	e.state = busIdle
	e.halfCtr = 0
	e.edgeCount = 0
	e.txShift = 0
	e.txBit = 0
	e.rxShift = 0
	e.bitsSampled = 0
	e.sampleNow = false
	e.cur = busOutputs{sclk: e.cpol, csn: true}
	e.nxt = e.cur
	e.wires.SCLK = e.cur.sclk
	e.wires.MOSI = false
	e.wires.CSN = true
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
