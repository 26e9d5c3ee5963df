// Simulated bus partners
// Pin-level device models driven by the same tick clock as the bus
// engine. They observe SCLK/MOSI/CSN edges one tick after they become
// visible and answer on MISO with registered outputs, the way a real
// synchronous peripheral would.
package sim

import "bmeacq/core"

// BME280 models the sensor's SPI slave interface: mode-correct edge
// sampling, write pairs (address with high bit clear, then value) and
// auto-incrementing burst reads (address with high bit set, then data
// while the master clocks filler bytes).
type BME280 struct {
	wires *core.Wires
	cpol  bool
	cpha  bool

	regs [256]uint8

	prevSCLK bool
	prevCSN  bool

	selected  bool
	rxShift   uint32
	bitsIn    uint8
	txShift   uint32
	txBit     uint8
	byteIdx   int
	readMode  bool
	readAddr  uint8
	writeAddr uint8
	haveAddr  bool

	curMISO bool
	nxtMISO bool
}

// NewBME280 builds a device with the given calibration image loaded at
// its device-defined offsets and the given initial measurement block at
// 0xF7.
func NewBME280(wires *core.Wires, mode uint8, calib core.CalibrationSet, raw [core.MeasureLen]uint8) *BME280 {
	d := &BME280{
		wires: wires,
		cpol:  mode&0x2 != 0,
		cpha:  mode&0x1 != 0,
	}
	copy(d.regs[core.RegCalibA:], calib[core.CalibAOffset:core.CalibAOffset+core.CalibALen])
	d.regs[core.RegCalibB] = calib[core.CalibBOffset]
	copy(d.regs[core.RegCalibC:], calib[core.CalibCOffset:core.CalibCOffset+core.CalibCLen])
	copy(d.regs[core.RegMeasure:], raw[:])
	d.Reset()
	return d
}

// SetMeasurement replaces the measurement block registers. Safe between
// bursts; a real device updates them between conversions the same way.
func (d *BME280) SetMeasurement(raw [core.MeasureLen]uint8) {
	copy(d.regs[core.RegMeasure:], raw[:])
}

// Reg returns a register value, for test inspection of written
// configuration.
func (d *BME280) Reg(addr uint8) uint8 {
	return d.regs[addr]
}

// Eval observes the bus wires as left by the previous tick.
func (d *BME280) Eval() {
	d.nxtMISO = d.curMISO

	csn := d.wires.CSN
	sclk := d.wires.SCLK

	if csn != d.prevCSN {
		if !csn {
			d.beginSelection()
		} else {
			d.selected = false
		}
	}

	if d.selected && sclk != d.prevSCLK {
		leading := sclk != d.cpol
		if leading != d.cpha {
			d.sampleBit()
		} else {
			d.shiftBit()
		}
	}

	d.prevCSN = csn
	d.prevSCLK = sclk
}

// Latch publishes MISO.
func (d *BME280) Latch() {
	d.curMISO = d.nxtMISO
	d.wires.MISO = d.curMISO
}

// Reset clears the selection state. The register image survives, as it
// would across a controller-side reset.
func (d *BME280) Reset() {
	d.prevCSN = true
	d.prevSCLK = d.cpol
	d.selected = false
	d.rxShift = 0
	d.bitsIn = 0
	d.txShift = 0
	d.txBit = 0
	d.byteIdx = 0
	d.readMode = false
	d.haveAddr = false
	d.curMISO = false
	d.nxtMISO = false
	d.wires.MISO = false
}

func (d *BME280) beginSelection() {
	d.selected = true
	d.rxShift = 0
	d.bitsIn = 0
	d.byteIdx = 0
	d.readMode = false
	d.haveAddr = false
	// The address phase response carries no data.
	d.txShift = 0
	d.txBit = 8
	if !d.cpha {
		// Mode 0/2: the first output bit must be valid before the
		// first leading edge.
		d.shiftBit()
	}
}

func (d *BME280) sampleBit() {
	d.rxShift = d.rxShift<<1 | b2u(d.wires.MOSI)
	d.bitsIn++
	if d.bitsIn == 8 {
		d.handleByte(uint8(d.rxShift))
		d.rxShift = 0
		d.bitsIn = 0
	}
}

func (d *BME280) shiftBit() {
	if d.txBit == 0 {
		return
	}
	d.txBit--
	d.nxtMISO = d.txShift>>d.txBit&1 != 0
}

// handleByte consumes one fully received byte and reloads the output
// shift register for the next one.
func (d *BME280) handleByte(b uint8) {
	if d.byteIdx == 0 {
		if b&0x80 != 0 {
			d.readMode = true
			d.readAddr = b
		} else {
			d.readMode = false
			d.writeAddr = b | 0x80
			d.haveAddr = true
		}
	} else if !d.readMode {
		// Writes alternate address and value bytes while selected.
		if d.haveAddr {
			d.regs[d.writeAddr] = b
			d.haveAddr = false
		} else {
			d.writeAddr = b | 0x80
			d.haveAddr = true
		}
	}

	if d.readMode {
		d.txShift = uint32(d.regs[d.readAddr])
		d.readAddr++
	} else {
		d.txShift = 0
	}
	d.txBit = 8
	d.byteIdx++
}

// Loopback echoes MOSI back on MISO with the one-tick registered delay
// every partner on this bus has. Used by bus engine round-trip tests.
type Loopback struct {
	wires *core.Wires
	nxt   bool
}

// NewLoopback returns an echo partner on the given wires.
func NewLoopback(wires *core.Wires) *Loopback {
	return &Loopback{wires: wires}
}

func (l *Loopback) Eval() {
	l.nxt = l.wires.MOSI
}

func (l *Loopback) Latch() {
	l.wires.MISO = l.nxt
}

func (l *Loopback) Reset() {
	l.nxt = false
	l.wires.MISO = false
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
