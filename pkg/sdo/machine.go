package sdo

// MachineError is the closed set of failures the client state machine can
// land on. It implements error so callers can use errors.Is/As without
// reaching into the machine's internals.
type MachineError struct {
	Kind MachineErrorKind
	// Got and Want are populated for IndexMismatch.
	Got, Want Index
	// Abort is populated for Aborted.
	Abort AbortCode
}

// MachineErrorKind discriminates the ways a transfer can fail.
type MachineErrorKind int

const (
	// StateResponseMismatch means the server sent a response the
	// current state never expects (e.g. a download ack mid-upload).
	StateResponseMismatch MachineErrorKind = iota
	// IndexMismatch means the server answered about a different
	// object than the one requested.
	IndexMismatch
	// Aborted means the peer sent AbortTransferResponse.
	Aborted
	// ToggleMismatch means the server's toggle bit did not match the
	// one the client expected next.
	ToggleMismatch
	// BufferOverflow means an upload would not fit the client's
	// receive buffer.
	BufferOverflow
)

func (e *MachineError) Error() string {
	switch e.Kind {
	case IndexMismatch:
		return "sdo: server answered about " + e.Got.String() + ", expected " + e.Want.String()
	case Aborted:
		return "sdo: transfer aborted by peer: " + e.Abort.Error()
	case ToggleMismatch:
		return "sdo: toggle bit not alternated by server"
	case BufferOverflow:
		return "sdo: upload exceeds client receive buffer"
	default:
		return "sdo: response did not match the current transfer state"
	}
}
