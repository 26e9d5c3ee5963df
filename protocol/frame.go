// Package protocol implements the byte contract the acquisition engine
// exposes to its downstream host link: one marked calibration frame per
// reset cycle, then a marked raw-code frame per measurement. The
// transport underneath (UART framing, flow control) is outside this
// module; these are exactly the bytes it must carry.
package protocol

import "bmeacq/core"

const (
	// MarkerCalibration starts the one-shot 32-byte calibration frame.
	MarkerCalibration = 0xFE

	// MarkerMeasurement starts an 8-byte raw measurement frame.
	MarkerMeasurement = 0xFF

	CalibrationFrameLen = 1 + core.CalibSetLen
	MeasurementFrameLen = 1 + core.MeasureLen

	// FrameMax is the largest frame the contract produces.
	FrameMax = CalibrationFrameLen
)

// EncodeCalibration writes the calibration frame: marker byte followed
// by the 32 calibration bytes in capture order.
func EncodeCalibration(out OutputBuffer, cal core.CalibrationSet) {
	out.Output([]byte{MarkerCalibration})
	out.Output(cal[:])
}

// EncodeMeasurement writes a measurement frame: marker byte followed by
// temperature MSB/LSB/XLSB, pressure MSB/LSB/XLSB, humidity MSB/LSB.
// The XLSB bytes carry the low nibble of each 20-bit code in their high
// nibble, matching the device register layout.
func EncodeMeasurement(out OutputBuffer, s core.MeasurementSample) {
	out.Output([]byte{
		MarkerMeasurement,
		uint8(s.Temperature >> 12),
		uint8(s.Temperature >> 4),
		uint8(s.Temperature&0xF) << 4,
		uint8(s.Pressure >> 12),
		uint8(s.Pressure >> 4),
		uint8(s.Pressure&0xF) << 4,
		uint8(s.Humidity >> 8),
		uint8(s.Humidity),
	})
}

// FrameKind discriminates decoded frames.
type FrameKind uint8

const (
	FrameCalibration FrameKind = iota
	FrameMeasurement
)

// Frame is one decoded host-link frame.
type Frame struct {
	Kind        FrameKind
	Calibration core.CalibrationSet
	Sample      core.MeasurementSample
}

// Decoder incrementally parses a frame stream. Bytes before the first
// recognizable marker are discarded, which resynchronizes after joining
// a stream mid-frame.
type Decoder struct {
	buf []byte
}

// Feed appends raw stream bytes to the decoder.
func (d *Decoder) Feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// Next returns the next complete frame, or ok=false when more bytes are
// needed.
func (d *Decoder) Next() (f Frame, ok bool) {
	// Resync to a marker byte.
	start := 0
	for start < len(d.buf) && d.buf[start] != MarkerCalibration && d.buf[start] != MarkerMeasurement {
		start++
	}
	d.buf = d.buf[start:]
	if len(d.buf) == 0 {
		return Frame{}, false
	}

	if d.buf[0] == MarkerCalibration {
		if len(d.buf) < CalibrationFrameLen {
			return Frame{}, false
		}
		f.Kind = FrameCalibration
		copy(f.Calibration[:], d.buf[1:CalibrationFrameLen])
		d.buf = d.buf[CalibrationFrameLen:]
		return f, true
	}

	if len(d.buf) < MeasurementFrameLen {
		return Frame{}, false
	}
	b := d.buf[1:MeasurementFrameLen]
	f.Kind = FrameMeasurement
	f.Sample = core.MeasurementSample{
		Temperature: core.AssembleU20(b[0], b[1], b[2]),
		Pressure:    core.AssembleU20(b[3], b[4], b[5]),
		Humidity:    core.AssembleU16(b[6], b[7]),
	}
	d.buf = d.buf[MeasurementFrameLen:]
	return f, true
}

// Pending returns the number of buffered, not yet decoded bytes.
func (d *Decoder) Pending() int {
	return len(d.buf)
}
