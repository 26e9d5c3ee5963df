// Acquisition controller
// Owns the full BME280 lifecycle over the byte bus: bring-up register
// writes, a one-shot three-burst calibration capture, and a repeating
// wait/read/publish measurement cycle. The bus engine's
// request/complete contract is its only means of moving bytes.
package core

// AcqConfig holds the construction-time controller configuration.
type AcqConfig struct {
	// WaitTicks is the inter-measurement delay in ticks. 0 selects the
	// default of 1,000,000.
	WaitTicks uint32

	// WatchdogTicks, when nonzero, latches the Stalled flag after that
	// many ticks spent awaiting a single transfer completion. Configure
	// it above the worst-case transfer latency. 0 disables.
	WatchdogTicks uint32
}

// DefaultWaitTicks is the inter-measurement delay used when AcqConfig
// leaves WaitTicks at zero.
const DefaultWaitTicks = 1000000

type acqState uint8

const (
	acqInit acqState = iota
	acqCalBurst1
	acqCalBurst2
	acqCalBurst3
	acqCalReady
	acqIdle
	acqWait
	acqMeasureBurst
	acqAssemble
	acqMeasureReady
)

// Controller sequences the device register protocol.
//
// State machine:
//
//	INIT -> CAL_BURST_1 -> CAL_BURST_2 -> CAL_BURST_3 -> CAL_READY ->
//	IDLE -> WAIT -> MEASURE_BURST -> ASSEMBLE -> MEASURE_READY -> IDLE (loop)
type Controller struct {
	bus ByteBus
	cfg AcqConfig

	state    acqState
	pos      uint8 // protocol position: transfers completed in the current phase
	awaiting bool  // a transfer is in flight
	waitCtr  uint32
	watchdog uint32
	tick     uint64

	calib      CalibrationSet
	calibValid bool
	raw        [MeasureLen]uint8
	sample     MeasurementSample
	sampleOK   bool

	cur, nxt acqOutputs
}

type acqOutputs struct {
	calReady  bool
	measReady bool
	stalled   bool
}

// NewController returns a controller driving the given bus.
func NewController(bus ByteBus, cfg AcqConfig) *Controller {
	if cfg.WaitTicks == 0 {
		cfg.WaitTicks = DefaultWaitTicks
	}
	c := &Controller{bus: bus, cfg: cfg}
	c.Reset()
	return c
}

// CalibrationReady is the one-tick pulse marking the calibration set
// complete. It fires exactly once per reset cycle.
func (c *Controller) CalibrationReady() bool {
	return c.cur.calReady
}

// MeasurementReady is the one-tick pulse marking a fresh sample.
func (c *Controller) MeasurementReady() bool {
	return c.cur.measReady
}

// Stalled reports the latched watchdog flag. Always false when the
// watchdog is disabled.
func (c *Controller) Stalled() bool {
	return c.cur.stalled
}

// Calibration returns a copy of the calibration set and whether it has
// been fully captured since the last reset.
func (c *Controller) Calibration() (CalibrationSet, bool) {
	return c.calib, c.calibValid
}

// Sample returns a copy of the most recent sample and whether it is
// valid. A sample is valid from its completion pulse until the start of
// the next acquisition cycle.
func (c *Controller) Sample() (MeasurementSample, bool) {
	return c.sample, c.sampleOK
}

// Eval advances the controller by one tick.
func (c *Controller) Eval() {
	c.tick++
	c.nxt = c.cur
	c.nxt.calReady = false
	c.nxt.measReady = false

	if c.awaiting {
		rx, done := c.bus.Done()
		if !done {
			if c.cfg.WatchdogTicks > 0 {
				c.watchdog++
				if c.watchdog > c.cfg.WatchdogTicks && !c.nxt.stalled {
					c.nxt.stalled = true
					RecordTrace(EvtStall, c.tick, uint32(c.state))
				}
			}
			return
		}
		c.awaiting = false
		c.watchdog = 0
		c.complete(rx)
		return
	}

	c.step()
}

// Latch publishes the outputs computed by Eval.
func (c *Controller) Latch() {
	c.cur = c.nxt
}

// Reset unconditionally returns the controller to INIT, discarding any
// partially captured calibration or measurement data.
func (c *Controller) Reset() {
	RecordTrace(EvtResetState, c.tick, uint32(c.state))
	c.state = acqInit
	c.pos = 0
	c.awaiting = false
	c.waitCtr = 0
	c.watchdog = 0
	c.calib = CalibrationSet{}
	c.calibValid = false
	c.raw = [MeasureLen]uint8{}
	c.sample = MeasurementSample{}
	c.sampleOK = false
	c.cur = acqOutputs{}
	c.nxt = c.cur
}

// step issues the next transfer or advances a non-bus phase.
func (c *Controller) step() {
	switch c.state {
	case acqInit:
		switch c.pos {
		case 0:
			c.request(WriteAddr(RegCtrlHum))
		case 1:
			c.request(CtrlHumOversample1)
		case 2:
			c.request(WriteAddr(RegCtrlMeas))
		case 3:
			c.request(CtrlMeasNormal)
		default:
			c.pos = 0
		}

	case acqCalBurst1, acqCalBurst2, acqCalBurst3, acqMeasureBurst:
		reg, n, _ := c.burst()
		switch {
		case c.pos == 0:
			c.request(ReadAddr(reg))
		case c.pos <= n:
			c.request(FillerByte)
		default:
			c.pos = 0
		}

	case acqCalReady:
		c.nxt.calReady = true
		c.calibValid = true
		c.state = acqIdle
		RecordTrace(EvtCalReady, c.tick, 0)

	case acqIdle:
		c.waitCtr = 0
		c.state = acqWait

	case acqWait:
		c.waitCtr++
		if c.waitCtr >= c.cfg.WaitTicks {
			c.waitCtr = 0
			c.sampleOK = false
			c.state = acqMeasureBurst
			c.pos = 0
		}

	case acqAssemble:
		c.sample = AssembleSample(&c.raw)
		c.state = acqMeasureReady

	case acqMeasureReady:
		c.nxt.measReady = true
		c.sampleOK = true
		c.state = acqIdle
		RecordTrace(EvtMeasReady, c.tick, c.sample.Temperature)

	default:
		// Impossible state guard.
		c.state = acqInit
		c.pos = 0
	}
}

// request issues one transfer and marks it in flight.
func (c *Controller) request(b uint8) {
	c.bus.Request(b)
	c.awaiting = true
	RecordTrace(EvtRequest, c.tick, uint32(b))
}

// release deselects the device at a transaction boundary.
func (c *Controller) release() {
	c.bus.Release()
	RecordTrace(EvtRelease, c.tick, 0)
}

// complete consumes one transfer completion and advances the protocol
// position.
func (c *Controller) complete(rx uint8) {
	RecordTrace(EvtComplete, c.tick, uint32(rx))

	switch c.state {
	case acqInit:
		c.pos++
		switch c.pos {
		case 2:
			// End of the ctrl_hum write pair.
			c.release()
		case 4:
			c.release()
			c.pos = 0
			c.state = acqCalBurst1
		}

	case acqCalBurst1, acqCalBurst2, acqCalBurst3, acqMeasureBurst:
		_, n, dst := c.burst()
		if c.pos > 0 {
			// The address phase response is discarded; data phase k
			// carries the byte for offset k-1.
			dst[c.pos-1] = rx
		}
		c.pos++
		if c.pos == n+1 {
			c.release()
			c.pos = 0
			c.advanceBurst()
		}

	default:
		// Completion in a non-bus state can only follow a reset that
		// interrupted a transfer; drop it.
		c.pos = 0
	}
}

// burst returns the register, data length and destination of the burst
// belonging to the current state.
func (c *Controller) burst() (reg uint8, n uint8, dst []uint8) {
	switch c.state {
	case acqCalBurst1:
		return RegCalibA, CalibALen, c.calib[CalibAOffset : CalibAOffset+CalibALen]
	case acqCalBurst2:
		return RegCalibB, CalibBLen, c.calib[CalibBOffset : CalibBOffset+CalibBLen]
	case acqCalBurst3:
		return RegCalibC, CalibCLen, c.calib[CalibCOffset : CalibCOffset+CalibCLen]
	default:
		return RegMeasure, MeasureLen, c.raw[:]
	}
}

// advanceBurst moves to the state following the just-finished burst.
func (c *Controller) advanceBurst() {
	switch c.state {
	case acqCalBurst1:
		c.state = acqCalBurst2
	case acqCalBurst2:
		c.state = acqCalBurst3
	case acqCalBurst3:
		c.state = acqCalReady
	case acqMeasureBurst:
		c.state = acqAssemble
	default:
		c.state = acqInit
	}
}
