package sdo

import (
	"errors"
	"fmt"
)

// ErrEncodingArguments is returned when an encode call is given
// out-of-range parameters (e.g. InitSingleSegmentDownload length not in
// 1..=4), a contract violation the reference implementation asserts on
// instead of returning an error.
var ErrEncodingArguments = errors.New("sdo: encoding arguments out of range")

// UnknownClientCommandSpecifierError is returned when decoding an SDO
// frame whose command byte carries a ccs outside the recognized set.
type UnknownClientCommandSpecifierError struct{ Code uint8 }

func (e *UnknownClientCommandSpecifierError) Error() string {
	return fmt.Sprintf("sdo: unknown client command specifier x%02x", e.Code)
}

// UnknownServerCommandSpecifierError is returned when decoding an SDO
// frame whose command byte carries an scs outside the recognized set.
type UnknownServerCommandSpecifierError struct{ Code uint8 }

func (e *UnknownServerCommandSpecifierError) Error() string {
	return fmt.Sprintf("sdo: unknown server command specifier x%02x", e.Code)
}

// UnsupportedTransferTypeError is returned when decoding an e/s bit
// pair this codec does not accept (see decodeTransferType).
type UnsupportedTransferTypeError struct{ Code uint8 }

func (e *UnsupportedTransferTypeError) Error() string {
	return fmt.Sprintf("sdo: unsupported transfer type x%02x", e.Code)
}
