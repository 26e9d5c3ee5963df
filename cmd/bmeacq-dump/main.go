// bmeacq-dump decodes the acquisition engine's frame stream and prints
// the calibration image and raw ADC codes. Input is a file, stdin, or a
// live serial port; hex mode accepts the newline-separated hex capture
// format bmeacq-sim produces. Converting raw codes to physical units is
// the downstream consumer's job, not this tool's.
package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"bmeacq/host/serial"
	"bmeacq/protocol"
)

var (
	device  = flag.String("device", "", "Serial device to read from (file/stdin when empty)")
	baud    = flag.Int("baud", 115200, "Serial baud rate")
	hexMode = flag.Bool("hex", false, "Input is hex text, one frame per line")
	maxN    = flag.Int("n", 0, "Stop after N measurement frames (0 = all)")
)

func main() {
	flag.Parse()

	var in io.Reader
	switch {
	case *device != "":
		port, err := serial.Open(&serial.Config{Device: *device, Baud: *baud, ReadTimeout: 100})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer port.Close()
		in = port
	case flag.NArg() > 0:
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	default:
		in = os.Stdin
	}

	var dec protocol.Decoder
	count := 0

	feed := func(p []byte) bool {
		dec.Feed(p)
		for {
			f, ok := dec.Next()
			if !ok {
				return true
			}
			switch f.Kind {
			case protocol.FrameCalibration:
				fmt.Printf("calibration | %s\n", strings.ToUpper(hex.EncodeToString(f.Calibration[:])))
			case protocol.FrameMeasurement:
				fmt.Printf("%03d | temp=0x%05X press=0x%05X hum=0x%04X\n",
					count, f.Sample.Temperature, f.Sample.Pressure, f.Sample.Humidity)
				count++
				if *maxN > 0 && count >= *maxN {
					return false
				}
			}
		}
	}

	if *hexMode {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			raw, err := hex.DecodeString(line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: skipping bad hex line: %v\n", err)
				continue
			}
			if !feed(raw) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	buf := make([]byte, 512)
	for {
		n, err := in.Read(buf)
		if n > 0 && !feed(buf[:n]) {
			return
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}
