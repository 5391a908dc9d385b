package sdo

// TransferType captures the e/s bit pair of an SDO initiate command
// byte: whether the transfer is expedited (data travels inline) or
// segmented (size may or may not be given up front).
type TransferType struct {
	// Segmented is true when e=0 (segmented/normal transfer).
	Segmented bool
	// SizeIndicated is true when s=1.
	SizeIndicated bool
	// ExpeditedLen is the number of valid data bytes (0..4) carried
	// inline when the transfer is expedited and size-indicated.
	ExpeditedLen uint8
}

// Normal is the segmented, size-specified transfer type (e=0, s=1).
func Normal() TransferType {
	return TransferType{Segmented: true, SizeIndicated: true}
}

// NormalUnspecifiedSize is the segmented, size-not-given transfer type
// (e=0, s=0).
func NormalUnspecifiedSize() TransferType {
	return TransferType{Segmented: true, SizeIndicated: false}
}

// ExpeditedWithSize is the expedited transfer type carrying n bytes of
// data inline (e=1, s=1), 0 <= n <= 4.
func ExpeditedWithSize(n uint8) TransferType {
	return TransferType{Segmented: false, SizeIndicated: true, ExpeditedLen: n}
}

// esBits returns the e/s bit pair encoding of this transfer type, plus
// the length field for an expedited transfer. Bit layout matches the
// low two bits of the SDO command byte: bit0 = s, bit1 = e.
func (t TransferType) esBits() uint8 {
	switch {
	case !t.Segmented && t.SizeIndicated:
		return 0x03 | ((4 - t.ExpeditedLen) << 2)
	case t.Segmented && t.SizeIndicated:
		return 0x01
	default:
		return 0x00
	}
}

// decodeTransferType recovers a TransferType from an SDO command byte.
// It returns an *UnsupportedTransferTypeError for e=1,s=0 (expedited without
// size), which CiA 301 permits but this decoder treats as unsupported
// on the wire forms this package accepts — see SPEC_FULL.md §4.2 for
// the rationale.
func decodeTransferType(cmd uint8) (TransferType, error) {
	switch cmd & 0x03 {
	case 0x01:
		return Normal(), nil
	case 0x03:
		n := 4 - ((cmd >> 2) & 0x03)
		return ExpeditedWithSize(n), nil
	case 0x00:
		return NormalUnspecifiedSize(), nil
	default: // 0x02: e=1, s=0
		return TransferType{}, &UnsupportedTransferTypeError{Code: cmd & 0x03}
	}
}
