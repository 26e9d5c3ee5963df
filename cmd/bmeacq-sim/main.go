// bmeacq-sim runs the acquisition engine against a simulated BME280 and
// emits the host-link frame stream: one calibration frame, then one raw
// measurement frame per acquisition cycle. Frames go to stdout as hex
// lines, or to a serial port as raw bytes.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"bmeacq/config"
	"bmeacq/core"
	"bmeacq/host/serial"
	"bmeacq/protocol"
	"bmeacq/sim"
)

var (
	configPath = flag.String("config", "", "JSON configuration file (defaults apply when empty)")
	samples    = flag.Int("samples", 40, "Number of measurement frames to emit (0 = run forever)")
	device     = flag.String("device", "", "Serial device for raw output (hex to stdout when empty)")
	drift      = flag.Bool("drift", true, "Slowly drift the simulated measurement registers")
	debug      = flag.Bool("debug", false, "Enable debug output on stderr")
)

// Default device image, captured from real hardware.
const (
	defaultCalibHex = "C96D356732009F8D41D6D00BE71F0600F9FFAC260AD8BD104B7001001320031E"
	defaultRawHex   = "5D91007F3E0076DA" // P msb/lsb/xlsb, T msb/lsb/xlsb, H msb/lsb
)

func main() {
	flag.Parse()

	core.SetDebugWriter(func(s string) { fmt.Fprintln(os.Stderr, s) })
	core.SetDebugEnabled(*debug)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	wires := &core.Wires{}
	engine, err := core.NewBusEngine(wires, core.BusConfig{
		TickRate: cfg.TickRate,
		BusRate:  cfg.BusRate,
		Mode:     cfg.Mode,
		Width:    cfg.Width,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctrl := core.NewController(engine, core.AcqConfig{
		WaitTicks:     cfg.WaitTicks,
		WatchdogTicks: cfg.WatchdogTicks,
	})

	dev := sim.NewBME280(wires, cfg.Mode, mustCalib(defaultCalibHex), mustRaw(defaultRawHex))
	clock := core.NewClock(wires, engine, ctrl, dev)

	var emit func(frame []byte)
	if *device != "" {
		port, err := serial.Open(&serial.Config{
			Device: *device,
			Baud:   cfg.Serial.Baud,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer port.Close()

		// Queue frames so a slow link does not have to be serviced on
		// every tick.
		fifo := protocol.NewFifoBuffer(4 * protocol.FrameMax)
		buf := make([]byte, protocol.FrameMax)
		emit = func(frame []byte) {
			fifo.Output(frame)
			for fifo.Available() > 0 {
				n := fifo.Read(buf)
				if _, err := port.Write(buf[:n]); err != nil {
					fmt.Fprintf(os.Stderr, "Error: serial write: %v\n", err)
					os.Exit(1)
				}
			}
		}
	} else {
		emit = func(frame []byte) {
			fmt.Println(strings.ToUpper(hex.EncodeToString(frame)))
		}
	}

	out := protocol.NewScratchOutput()
	raw := mustRaw(defaultRawHex)
	emitted := 0

	for *samples == 0 || emitted < *samples {
		clock.Tick()

		if ctrl.Stalled() {
			core.DumpTraceRing()
			fmt.Fprintln(os.Stderr, "Error: bus watchdog fired, partner not responding")
			os.Exit(1)
		}

		if ctrl.CalibrationReady() {
			cal, _ := ctrl.Calibration()
			out.Reset()
			protocol.EncodeCalibration(out, cal)
			emit(out.Result())
		}

		if ctrl.MeasurementReady() {
			s, _ := ctrl.Sample()
			out.Reset()
			protocol.EncodeMeasurement(out, s)
			emit(out.Result())
			emitted++

			if *drift {
				raw = driftRaw(raw)
				dev.SetMeasurement(raw)
			}
		}
	}
}

// driftRaw nudges the raw codes the way a real sensor wanders between
// conversions.
func driftRaw(raw [core.MeasureLen]uint8) [core.MeasureLen]uint8 {
	p := core.AssembleU20(raw[0], raw[1], raw[2]) + 3
	t := core.AssembleU20(raw[3], raw[4], raw[5]) + 1
	h := core.AssembleU16(raw[6], raw[7]) + 5

	return [core.MeasureLen]uint8{
		uint8(p >> 12), uint8(p >> 4), uint8(p&0xF) << 4,
		uint8(t >> 12), uint8(t >> 4), uint8(t&0xF) << 4,
		uint8(h >> 8), uint8(h),
	}
}

func mustCalib(s string) core.CalibrationSet {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != core.CalibSetLen {
		panic("bad calibration image")
	}
	var cal core.CalibrationSet
	copy(cal[:], b)
	return cal
}

func mustRaw(s string) [core.MeasureLen]uint8 {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != core.MeasureLen {
		panic("bad measurement image")
	}
	var raw [core.MeasureLen]uint8
	copy(raw[:], b)
	return raw
}
