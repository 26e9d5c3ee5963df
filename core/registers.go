package core

// BME280 register map (SPI access).
//
// The device keeps its register addresses in the 0x80-0xFF range; the
// address byte of an SPI transaction selects read or write with bit 7:
// reads send the address with the high bit set, writes with it cleared.
// Burst reads auto-increment on the device side.
const (
	RegCalibA   = 0x88 // calibration block A, 24 bytes (0x88-0x9F)
	RegCalibB   = 0xA1 // calibration block B, 1 byte
	RegCtrlHum  = 0xF2 // humidity oversampling
	RegStatus   = 0xF3
	RegCtrlMeas = 0xF4 // temperature/pressure oversampling + mode
	RegConfig   = 0xF5
	RegCalibC   = 0xE1 // calibration block C, 7 bytes (0xE1-0xE7)
	RegMeasure  = 0xF7 // burst measurement block, 8 bytes (0xF7-0xFE)
)

// Burst lengths (data bytes, excluding the address phase).
const (
	CalibALen   = 24
	CalibBLen   = 1
	CalibCLen   = 7
	MeasureLen  = 8
	CalibSetLen = CalibALen + CalibBLen + CalibCLen
)

// Offsets of each calibration block inside the CalibrationSet.
const (
	CalibAOffset = 0
	CalibBOffset = CalibAOffset + CalibALen
	CalibCOffset = CalibBOffset + CalibBLen
)

// Bring-up register values written during INIT.
const (
	CtrlHumOversample1 = 0x01 // osrs_h = x1
	CtrlMeasNormal     = 0x27 // osrs_t = x1, osrs_p = x1, mode = normal
)

// FillerByte is clocked out during the data phase of a read burst; the
// device ignores it.
const FillerByte = 0x00

// ReadAddr returns the address byte for a register read.
func ReadAddr(reg uint8) uint8 {
	return reg | 0x80
}

// WriteAddr returns the address byte for a register write.
func WriteAddr(reg uint8) uint8 {
	return reg &^ 0x80
}
