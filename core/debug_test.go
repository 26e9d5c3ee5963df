package core

import (
	"strings"
	"testing"
)

func TestTraceRingDump(t *testing.T) {
	ClearTraceRing()

	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})

	RecordTrace(EvtRequest, 10, 0xF2)
	RecordTrace(EvtComplete, 12, 0x00)
	RecordTrace(EvtCalReady, 500, 0)

	DumpTraceRing()

	joined := strings.Join(lines, "\n")
	for _, want := range []string{"REQUEST", "COMPLETE", "CAL_READY", "tick=10", "value=0xF2"} {
		if !strings.Contains(joined, want) {
			t.Errorf("dump missing %q:\n%s", want, joined)
		}
	}

	// Events past the ring size overwrite the oldest entries.
	ClearTraceRing()
	for i := 0; i < TraceRingSize+5; i++ {
		RecordTrace(EvtRequest, uint64(i), 0)
	}
	lines = nil
	DumpTraceRing()
	joined = strings.Join(lines, "\n")
	if !strings.Contains(joined, "tick="+utoa64(uint64(TraceRingSize+4))+" ") {
		t.Error("newest event missing after wraparound")
	}
	if strings.Contains(joined, "tick=2 ") {
		t.Error("overwritten event still present")
	}

	ClearTraceRing()
}

func TestDebugPrintlnGated(t *testing.T) {
	var got []string
	SetDebugWriter(func(s string) { got = append(got, s) })
	defer SetDebugWriter(func(string) {})

	SetDebugEnabled(false)
	DebugPrintln("dropped")
	SetDebugEnabled(true)
	DebugPrintln("kept")
	SetDebugEnabled(false)

	if len(got) != 1 || got[0] != "kept" {
		t.Errorf("got %v, want only the enabled message", got)
	}
}
