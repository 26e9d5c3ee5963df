package core

// CalibrationSet is the fixed-order 32-byte calibration image read once
// per reset cycle: registers 0x88-0x9F, then 0xA1, then 0xE1-0xE7.
// Positions are device-defined; the compensation math that consumes
// them lives outside this module.
type CalibrationSet [CalibSetLen]byte

// MeasurementSample holds one set of raw ADC codes. The 20-bit fields
// are assembled from three bytes each with the low nibble of the XLSB
// discarded; humidity is a plain 16-bit code.
type MeasurementSample struct {
	Temperature uint32 // 20-bit raw code
	Pressure    uint32 // 20-bit raw code
	Humidity    uint16 // 16-bit raw code
}

// AssembleU20 concatenates a MSB/LSB/XLSB triple into a 20-bit code.
func AssembleU20(msb, lsb, xlsb uint8) uint32 {
	return uint32(msb)<<12 | uint32(lsb)<<4 | uint32(xlsb)>>4
}

// AssembleU16 concatenates a MSB/LSB pair into a 16-bit code.
func AssembleU16(msb, lsb uint8) uint16 {
	return uint16(msb)<<8 | uint16(lsb)
}

// AssembleSample builds a sample from the 8 bytes of a measurement
// burst, in device register order: pressure MSB/LSB/XLSB, temperature
// MSB/LSB/XLSB, humidity MSB/LSB.
func AssembleSample(raw *[MeasureLen]uint8) MeasurementSample {
	return MeasurementSample{
		Pressure:    AssembleU20(raw[0], raw[1], raw[2]),
		Temperature: AssembleU20(raw[3], raw[4], raw[5]),
		Humidity:    AssembleU16(raw[6], raw[7]),
	}
}
