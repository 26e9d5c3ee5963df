package core

import "testing"

func TestAssembleSample(t *testing.T) {
	raw := [MeasureLen]uint8{
		0x12, 0x34, 0x50, // pressure MSB/LSB/XLSB
		0x56, 0x78, 0x90, // temperature MSB/LSB/XLSB
		0x9A, 0xBC, // humidity MSB/LSB
	}

	s := AssembleSample(&raw)

	if s.Pressure != 0x12345 {
		t.Errorf("pressure = 0x%05X, want 0x12345", s.Pressure)
	}
	if s.Temperature != 0x56789 {
		t.Errorf("temperature = 0x%05X, want 0x56789", s.Temperature)
	}
	if s.Humidity != 0x9ABC {
		t.Errorf("humidity = 0x%04X, want 0x9ABC", s.Humidity)
	}
}

func TestAssembleDiscardsXLSBLowNibble(t *testing.T) {
	// The low nibble of the XLSB byte is not part of the 20-bit code.
	if got := AssembleU20(0xFF, 0xFF, 0xFF); got != 0xFFFFF {
		t.Errorf("AssembleU20 all-ones = 0x%X, want 0xFFFFF", got)
	}
	if got := AssembleU20(0x00, 0x00, 0x0F); got != 0 {
		t.Errorf("AssembleU20 nibble-only = 0x%X, want 0", got)
	}
}

func TestAddressBytes(t *testing.T) {
	if got := ReadAddr(RegCalibA); got != 0x88 {
		t.Errorf("ReadAddr(0x88) = 0x%02X, want 0x88", got)
	}
	if got := WriteAddr(RegCtrlHum); got != 0x72 {
		t.Errorf("WriteAddr(0xF2) = 0x%02X, want 0x72", got)
	}
	if got := WriteAddr(RegCtrlMeas); got != 0x74 {
		t.Errorf("WriteAddr(0xF4) = 0x%02X, want 0x74", got)
	}
}
