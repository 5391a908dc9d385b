package sdo

import "fmt"

// AbortCode is one of the closed set of SDO abort codes defined by
// CiA 301 §7.2.4.3.17. Unknown wire values decode to GeneralError.
type AbortCode uint32

const (
	ToggleBitNotAlternated      AbortCode = 0x05030000
	SdoProtocolTimedOut         AbortCode = 0x05040000
	CommandSpecifierNotValid    AbortCode = 0x05040001
	InvalidBlockSize            AbortCode = 0x05040002
	InvalidSequenceNumber       AbortCode = 0x05040003
	CrcError                    AbortCode = 0x05040004
	OutOfMemory                 AbortCode = 0x05040005
	UnsupportedAccess           AbortCode = 0x06010000
	WriteOnlyObject             AbortCode = 0x06010001
	ReadOnlyObject              AbortCode = 0x06010002
	ObjectDoesNotExist          AbortCode = 0x06020000
	ObjectCannotBeMapped        AbortCode = 0x06040041
	PdoMappingLengthExceeded    AbortCode = 0x06040042
	GeneralParameterIncompat    AbortCode = 0x06040043
	GeneralInternalIncompat     AbortCode = 0x06040047
	HardwareError               AbortCode = 0x06060000
	DataTypeLengthMismatch      AbortCode = 0x06070010
	DataTypeLengthTooHigh       AbortCode = 0x06070012
	DataTypeLengthTooLow        AbortCode = 0x06070013
	SubindexDoesNotExist        AbortCode = 0x06090011
	InvalidDownloadValue        AbortCode = 0x06090030
	DownloadValueTooHigh        AbortCode = 0x06090031
	DownloadValueTooLow         AbortCode = 0x06090032
	MaximumLessThanMinimum      AbortCode = 0x06090036
	ResourceNotAvailable        AbortCode = 0x060A0023
	GeneralError                AbortCode = 0x08000000
	DataCannotBeTransferred     AbortCode = 0x08000020
	DataTransferLocalControl    AbortCode = 0x08000021
	DataTransferDeviceState     AbortCode = 0x08000022
	ObjectDictionaryUnavailable AbortCode = 0x08000023
	NoDataAvailable             AbortCode = 0x08000024
)

var abortDescriptions = map[AbortCode]string{
	ToggleBitNotAlternated:      "toggle bit not alternated",
	SdoProtocolTimedOut:         "SDO protocol timed out",
	CommandSpecifierNotValid:    "client/server command specifier not valid or unknown",
	InvalidBlockSize:            "invalid block size in block mode",
	InvalidSequenceNumber:       "invalid sequence number in block mode",
	CrcError:                    "CRC error (block mode only)",
	OutOfMemory:                 "out of memory",
	UnsupportedAccess:           "unsupported access to an object",
	WriteOnlyObject:             "attempt to read a write only object",
	ReadOnlyObject:              "attempt to write a read only object",
	ObjectDoesNotExist:          "object does not exist in the object dictionary",
	ObjectCannotBeMapped:        "object cannot be mapped to the PDO",
	PdoMappingLengthExceeded:    "number and length of mapped objects exceeds PDO length",
	GeneralParameterIncompat:    "general parameter incompatibility",
	GeneralInternalIncompat:     "general internal incompatibility in the device",
	HardwareError:               "access failed due to a hardware error",
	DataTypeLengthMismatch:      "data type does not match, length does not match",
	DataTypeLengthTooHigh:       "data type does not match, length too high",
	DataTypeLengthTooLow:        "data type does not match, length too low",
	SubindexDoesNotExist:        "subindex does not exist",
	InvalidDownloadValue:        "invalid value for parameter (download only)",
	DownloadValueTooHigh:        "value range of parameter written too high",
	DownloadValueTooLow:         "value range of parameter written too low",
	MaximumLessThanMinimum:      "maximum value is less than minimum value",
	ResourceNotAvailable:        "resource not available: SDO connection",
	GeneralError:                "general error",
	DataCannotBeTransferred:     "data cannot be transferred or stored to the application",
	DataTransferLocalControl:    "data cannot be transferred because of local control",
	DataTransferDeviceState:     "data cannot be transferred because of the present device state",
	ObjectDictionaryUnavailable: "object dictionary not present or dynamic generation failed",
	NoDataAvailable:             "no data available",
}

// DecodeAbortCode maps a wire value to an AbortCode, falling back to
// GeneralError for values outside the closed set.
func DecodeAbortCode(raw uint32) AbortCode {
	code := AbortCode(raw)
	if _, known := abortDescriptions[code]; known {
		return code
	}
	return GeneralError
}

// Description returns the CiA 301 prose description of the abort code.
func (a AbortCode) Description() string {
	if d, ok := abortDescriptions[a]; ok {
		return d
	}
	return abortDescriptions[GeneralError]
}

func (a AbortCode) Error() string {
	return fmt.Sprintf("sdo abort x%08x: %s", uint32(a), a.Description())
}
