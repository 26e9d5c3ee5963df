package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TraceEvent captures an acquisition event for post-mortem analysis
type TraceEvent struct {
	EventType uint8  // Event type code
	Tick      uint64 // Tick count at event
	Value     uint32 // Context-dependent value (byte on the wire, state, ...)
}

// Event type codes
const (
	EvtRequest    = 1 // Byte transfer requested
	EvtComplete   = 2 // Byte transfer completed
	EvtRelease    = 3 // Device deselected
	EvtCalReady   = 4 // Calibration burst captured
	EvtMeasReady  = 5 // Measurement captured
	EvtStall      = 6 // Watchdog tripped
	EvtResetState = 7 // State machine reset
)

const (
	TraceRingSize = 64 // Keep last 64 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	// Disabled by default; tracing stays on regardless
	debugEnabled bool = false

	// Trace capture ring buffer (non-blocking, for post-mortem)
	traceRing     [TraceRingSize]TraceEvent
	traceRingHead uint8
	traceEnabled  bool = true
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordTrace captures an acquisition event in the ring buffer
// This is always non-blocking and very fast
func RecordTrace(eventType uint8, tick uint64, value uint32) {
	if !traceEnabled {
		return
	}
	idx := traceRingHead
	traceRing[idx] = TraceEvent{
		EventType: eventType,
		Tick:      tick,
		Value:     value,
	}
	traceRingHead = (idx + 1) % TraceRingSize
}

// DumpTraceRing outputs the trace ring buffer (call on stall/shutdown)
func DumpTraceRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TRACE] === Event Ring Dump ===")

	// Read from oldest to newest
	start := traceRingHead
	for i := uint8(0); i < TraceRingSize; i++ {
		idx := (start + i) % TraceRingSize
		evt := &traceRing[idx]
		if evt.EventType == 0 {
			continue // Empty slot
		}

		var name string
		switch evt.EventType {
		case EvtRequest:
			name = "REQUEST"
		case EvtComplete:
			name = "COMPLETE"
		case EvtRelease:
			name = "RELEASE"
		case EvtCalReady:
			name = "CAL_READY"
		case EvtMeasReady:
			name = "MEAS_READY"
		case EvtStall:
			name = "STALL!"
		case EvtResetState:
			name = "RESET"
		default:
			name = "UNKNOWN"
		}

		debugPrintln("[TRACE] " + name +
			" tick=" + utoa64(evt.Tick) +
			" value=0x" + utox(evt.Value))
	}
	debugPrintln("[TRACE] === End Dump ===")
}

// ClearTraceRing clears the trace buffer
func ClearTraceRing() {
	for i := range traceRing {
		traceRing[i] = TraceEvent{}
	}
	traceRingHead = 0
}
