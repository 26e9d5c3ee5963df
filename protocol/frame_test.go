package protocol

import (
	"bytes"
	"testing"

	"bmeacq/core"
)

func TestEncodeMeasurement(t *testing.T) {
	out := NewScratchOutput()
	EncodeMeasurement(out, core.MeasurementSample{
		Temperature: 0x56789,
		Pressure:    0x12345,
		Humidity:    0x9ABC,
	})

	want := []byte{0xFF, 0x56, 0x78, 0x90, 0x12, 0x34, 0x50, 0x9A, 0xBC}
	if !bytes.Equal(out.Result(), want) {
		t.Errorf("frame = %X, want %X", out.Result(), want)
	}
}

func TestEncodeCalibration(t *testing.T) {
	var cal core.CalibrationSet
	for i := range cal {
		cal[i] = uint8(i)
	}

	out := NewScratchOutput()
	EncodeCalibration(out, cal)

	frame := out.Result()
	if len(frame) != CalibrationFrameLen {
		t.Fatalf("frame length %d, want %d", len(frame), CalibrationFrameLen)
	}
	if frame[0] != MarkerCalibration {
		t.Errorf("marker = 0x%02X, want 0x%02X", frame[0], MarkerCalibration)
	}
	if !bytes.Equal(frame[1:], cal[:]) {
		t.Error("calibration payload mismatch")
	}
}

func TestDecoderRoundTrip(t *testing.T) {
	var cal core.CalibrationSet
	for i := range cal {
		cal[i] = uint8(0xE0 - i)
	}
	sample := core.MeasurementSample{Temperature: 0x7F3E0, Pressure: 0x5D910, Humidity: 0x76DA}

	out := NewScratchOutput()
	EncodeCalibration(out, cal)
	stream := append([]byte{}, out.Result()...)
	out.Reset()
	EncodeMeasurement(out, sample)
	stream = append(stream, out.Result()...)

	// Feed in awkward chunk sizes to exercise incremental parsing.
	var dec Decoder
	var frames []Frame
	for len(stream) > 0 {
		n := 3
		if n > len(stream) {
			n = len(stream)
		}
		dec.Feed(stream[:n])
		stream = stream[n:]
		for {
			f, ok := dec.Next()
			if !ok {
				break
			}
			frames = append(frames, f)
		}
	}

	if len(frames) != 2 {
		t.Fatalf("decoded %d frames, want 2", len(frames))
	}
	if frames[0].Kind != FrameCalibration || frames[0].Calibration != cal {
		t.Error("calibration frame did not round-trip")
	}
	if frames[1].Kind != FrameMeasurement || frames[1].Sample != sample {
		t.Errorf("measurement frame did not round-trip: %+v", frames[1].Sample)
	}
}

func TestDecoderResync(t *testing.T) {
	out := NewScratchOutput()
	EncodeMeasurement(out, core.MeasurementSample{Temperature: 1, Pressure: 2, Humidity: 3})

	// Garbage before the marker must be discarded.
	var dec Decoder
	dec.Feed([]byte{0x00, 0x12, 0x7E})
	dec.Feed(out.Result())

	f, ok := dec.Next()
	if !ok {
		t.Fatal("no frame decoded after garbage prefix")
	}
	if f.Kind != FrameMeasurement || f.Sample.Humidity != 3 {
		t.Errorf("decoded %+v", f)
	}
	if _, ok := dec.Next(); ok {
		t.Error("spurious extra frame")
	}
}
