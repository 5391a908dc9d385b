package sdo

// Observation is what a ClientMachine reports about itself: nothing to
// do, a request to send, a finished transfer, or a failure. It is a
// closed set; switch over its dynamic type with a default case that
// panics on an unrecognized implementation, since any new variant
// belongs in this file.
type Observation interface {
	isObservation()
}

// Ready means the machine has no outstanding work and will accept a
// new Read or Write.
type Ready struct{}

// Request is the ClientRequest the host must put on the wire next.
type Request struct {
	Req ClientRequest
}

// Done means the transfer reached a terminal, successful state.
type Done struct {
	Result ClientResult
}

// Failed means the transfer landed in the machine's error state.
type Failed struct {
	Err *MachineError
}

func (Ready) isObservation()   {}
func (Request) isObservation() {}
func (Done) isObservation()    {}
func (Failed) isObservation()  {}

// ClientResult is the payload of a Done observation.
type ClientResult interface {
	isClientResult()
}

// UploadCompleted carries the bytes fetched from Index.
type UploadCompleted struct {
	Index Index
	Data  []byte
}

// DownloadCompleted confirms a write to Index finished.
type DownloadCompleted struct {
	Index Index
}

// TransferAborted means the peer sent an AbortTransferResponse for
// Index before the transfer finished. It is a Done result, not a
// Failed one: the peer's abort is a normal, well-formed outcome of an
// SDO exchange, distinct from a protocol violation.
type TransferAborted struct {
	Index Index
	Code  AbortCode
}

func (UploadCompleted) isClientResult()   {}
func (DownloadCompleted) isClientResult() {}
func (TransferAborted) isClientResult()   {}
