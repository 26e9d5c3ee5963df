// Synchronous scheduling substrate
// Both protocol state machines advance exactly once per discrete tick,
// driven by a shared clock rather than independent goroutines, so the
// request/complete handshake ordering is fully deterministic.
package core

// Machine is a synchronous state machine evaluated once per tick.
//
// Eval computes the next state from the currently visible inputs; Latch
// publishes that state. The two-phase split gives registered-output
// semantics: a change requested during Eval becomes externally visible
// only after the Latch phase of the same tick, i.e. on the next tick
// from any other machine's point of view.
type Machine interface {
	Eval()
	Latch()
	Reset()
}

// Wires holds the shared bus signal state between machines.
//
// SCLK and MOSI are driven by the bus engine, CSN by the engine under
// controller direction (active low), and MISO by the bus partner. Each
// driver updates its signals during its own Latch phase only.
type Wires struct {
	SCLK bool // bus clock
	MOSI bool // controller -> device data
	MISO bool // device -> controller data
	CSN  bool // chip select, active low
}

// Clock drives an ordered set of machines through shared tick cycles.
type Clock struct {
	wires    *Wires
	machines []Machine
	now      uint64
}

// NewClock creates a clock driving the given machines in order.
func NewClock(wires *Wires, machines ...Machine) *Clock {
	return &Clock{wires: wires, machines: machines}
}

// Tick advances every machine by one cycle: all Eval phases run first
// against the previous tick's wire state, then all Latch phases publish
// the new state.
func (c *Clock) Tick() {
	for _, m := range c.machines {
		m.Eval()
	}
	for _, m := range c.machines {
		m.Latch()
	}
	c.now++
}

// Run advances the clock by n ticks.
func (c *Clock) Run(n int) {
	for i := 0; i < n; i++ {
		c.Tick()
	}
}

// Now returns the number of ticks elapsed since construction or the
// last Reset.
func (c *Clock) Now() uint64 {
	return c.now
}

// Reset unconditionally returns every machine to its initial state and
// the wires to electrical idle. Any in-flight transfer or partially
// filled buffer is discarded.
func (c *Clock) Reset() {
	for _, m := range c.machines {
		m.Reset()
	}
	c.now = 0
}
