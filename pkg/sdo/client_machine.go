package sdo

import "github.com/sirupsen/logrus"

// clientStateKind is the private state of a ClientMachine. It mirrors
// CiA 301's client-side SDO transaction states, collapsed to the
// expedited/segmented upload and download paths this package supports.
type clientStateKind int

const (
	csIdle clientStateKind = iota
	csInitUpload
	csSingleSegmentUploaded
	csUploadingMultiples
	csMultiplesUploaded
	csInitSingleDownload
	csInitMultipleDownload
	csDownloadingSegments
	csDownloadCompleted
	csAborted
	csErrorState
)

// clientBufferSize bounds how much object data a single ClientMachine
// can upload or download in one transfer.
const clientBufferSize = 1024

// ErrWriteTooLarge is returned by Write when data would not fit in the
// machine's transfer buffer.
var ErrWriteTooLarge = sdoErrorString("sdo: write data exceeds the client's transfer buffer")

// ErrClientBusy is returned by Read/Write when the machine is already
// running a transfer. The request is rejected outright rather than
// queued or silently dropped, so the caller can retry once observe()
// reports the machine ready again.
var ErrClientBusy = sdoErrorString("sdo: client is busy with another transfer")

// ErrReset is delivered to a Read or Write still in flight when Initial
// forces the machine back to Idle, so a waiting caller is unblocked
// instead of left hanging forever.
var ErrReset = sdoErrorString("sdo: client was reset to idle")

type sdoErrorString string

func (e sdoErrorString) Error() string { return string(e) }

// ClientMachine is the single-transfer SDO client state machine. It
// holds no transport of its own: a host feeds it ServerResponse values
// via Transit and drives the wire by reading back the ClientRequest
// carried in the Observation returned from Observe. It is not safe for
// concurrent use.
type ClientMachine struct {
	index Index
	state clientStateKind

	toggle      ToggleBit
	dataIndex   int
	downloadLen int
	data        [clientBufferSize]byte

	err       *MachineError
	abortCode AbortCode

	readResponder  Responder[ReadOutcome]
	writeResponder Responder[WriteOutcome]
	delivered      bool
}

// NewClientMachine returns a machine in its idle, ready state.
func NewClientMachine() *ClientMachine {
	return &ClientMachine{state: csIdle}
}

// IsReady reports whether the machine accepts a new Read or Write:
// either it never started a transfer, or the previous one reached a
// terminal state (completed or failed) whose result the host has had a
// chance to observe.
func (c *ClientMachine) IsReady() bool {
	switch c.state {
	case csIdle, csSingleSegmentUploaded, csMultiplesUploaded, csDownloadCompleted, csAborted, csErrorState:
		return true
	default:
		return false
	}
}

func (c *ClientMachine) reset() {
	c.state = csIdle
	c.toggle = false
	c.dataIndex = 0
	c.downloadLen = 0
	c.err = nil
	c.readResponder = nil
	c.writeResponder = nil
	c.delivered = false
}

// Initial forces the machine back to Idle regardless of its current
// state. Any Read or Write still in flight is delivered ErrReset rather
// than left to hang, then the machine is cleared exactly as NewClientMachine
// would leave it. Intended for an external collaborator supervising
// transfer timeouts: a transfer that never reaches a terminal state on
// its own can be cancelled this way so the machine becomes ready again.
func (c *ClientMachine) Initial() {
	if !c.delivered {
		if c.readResponder != nil {
			c.readResponder.Respond(ReadOutcome{Err: ErrReset})
		}
		if c.writeResponder != nil {
			c.writeResponder.Respond(WriteOutcome{Err: ErrReset})
		}
	}
	c.reset()
}

// Read starts an upload of the object at index. responder receives the
// result exactly once, when the transfer reaches a terminal state.
func (c *ClientMachine) Read(index Index, responder Responder[ReadOutcome]) error {
	if !c.IsReady() {
		return ErrClientBusy
	}
	c.reset()
	c.index = index
	c.state = csInitUpload
	c.readResponder = responder
	logrus.WithField("index", index).Debug("sdo: starting upload")
	return nil
}

// Write starts a download of data to the object at index, choosing the
// expedited or segmented path by length. responder receives the result
// exactly once.
func (c *ClientMachine) Write(index Index, data []byte, responder Responder[WriteOutcome]) error {
	if !c.IsReady() {
		return ErrClientBusy
	}
	if len(data) > len(c.data) {
		return ErrWriteTooLarge
	}
	c.reset()
	c.index = index
	c.downloadLen = len(data)
	copy(c.data[:], data)
	if len(data) <= 4 {
		c.state = csInitSingleDownload
	} else {
		c.state = csInitMultipleDownload
	}
	c.writeResponder = responder
	logrus.WithField("index", index).Debug("sdo: starting download")
	return nil
}

// Transit feeds one ServerResponse to the machine, advancing its state.
// A response the current state does not expect moves the machine to
// its error state rather than being ignored.
func (c *ClientMachine) Transit(resp ServerResponse) {
	if ab, ok := resp.(AbortTransferResponse); ok && !c.IsReady() {
		c.state = csAborted
		c.abortCode = ab.Code
		return
	}

	switch c.state {
	case csInitUpload:
		c.transitInitUpload(resp)
	case csUploadingMultiples:
		c.transitUploadingMultiples(resp)
	case csInitSingleDownload:
		c.transitDownloadInitAck(csDownloadCompleted, resp)
	case csInitMultipleDownload:
		c.transitDownloadInitAck(csDownloadingSegments, resp)
	case csDownloadingSegments:
		c.transitDownloadingSegments(resp)
	default:
		c.fail(&MachineError{Kind: StateResponseMismatch})
	}
}

func (c *ClientMachine) transitInitUpload(resp ServerResponse) {
	switch r := resp.(type) {
	case UploadSingleSegment:
		if r.Index != c.index {
			c.fail(&MachineError{Kind: IndexMismatch, Got: r.Index, Want: c.index})
			return
		}
		copy(c.data[0:4], r.Data[:])
		c.dataIndex = int(r.N)
		c.state = csSingleSegmentUploaded

	case UploadInitMultiples:
		if r.Index != c.index {
			c.fail(&MachineError{Kind: IndexMismatch, Got: r.Index, Want: c.index})
			return
		}
		c.dataIndex = 0
		c.toggle = false
		c.state = csUploadingMultiples

	default:
		c.fail(&MachineError{Kind: StateResponseMismatch})
	}
}

func (c *ClientMachine) transitUploadingMultiples(resp ServerResponse) {
	r, ok := resp.(UploadMultiples)
	if !ok {
		c.fail(&MachineError{Kind: StateResponseMismatch})
		return
	}
	if r.Toggle != c.toggle {
		c.fail(&MachineError{Kind: ToggleMismatch})
		return
	}

	n := int(r.Len)
	if c.dataIndex+n > len(c.data) {
		c.fail(&MachineError{Kind: BufferOverflow})
		return
	}
	copy(c.data[c.dataIndex:c.dataIndex+n], r.Data[:n])
	c.dataIndex += n

	if r.Last {
		c.state = csMultiplesUploaded
	} else {
		c.toggle = c.toggle.Not()
	}
}

// transitDownloadInitAck handles the DownloadInitAck that follows both
// InitSingleSegmentDownload and InitMultipleDownload; next is the state
// to move to once the index checks out.
func (c *ClientMachine) transitDownloadInitAck(next clientStateKind, resp ServerResponse) {
	r, ok := resp.(DownloadInitAck)
	if !ok {
		c.fail(&MachineError{Kind: StateResponseMismatch})
		return
	}
	if r.Index != c.index {
		c.fail(&MachineError{Kind: IndexMismatch, Got: r.Index, Want: c.index})
		return
	}
	if next == csDownloadingSegments {
		c.toggle = false
		c.dataIndex = 0
	}
	c.state = next
}

func (c *ClientMachine) transitDownloadingSegments(resp ServerResponse) {
	r, ok := resp.(DownloadSegmentAck)
	if !ok {
		c.fail(&MachineError{Kind: StateResponseMismatch})
		return
	}
	if r.Toggle != c.toggle {
		c.fail(&MachineError{Kind: ToggleMismatch})
		return
	}

	if c.dataIndex+7 < c.downloadLen {
		c.toggle = c.toggle.Not()
		c.dataIndex += 7
	} else {
		c.state = csDownloadCompleted
	}
}

func (c *ClientMachine) fail(err *MachineError) {
	logrus.WithFields(logrus.Fields{"index": c.index, "kind": err.Kind}).Warn("sdo: transfer failed")
	c.state = csErrorState
	c.err = err
}

// Observe reports what the machine currently wants: nothing (Ready), a
// request to put on the wire (Request), a finished transfer (Done), or
// a failure (Failed). Reaching a terminal observation delivers the
// outcome to whichever Responder is registered, exactly once; calling
// Observe again before the next Read/Write keeps returning the same
// terminal Observation without redelivering.
func (c *ClientMachine) Observe() Observation {
	switch c.state {
	case csIdle:
		return Ready{}

	case csInitUpload:
		return Request{Req: InitUpload{Index: c.index}}

	case csUploadingMultiples:
		return Request{Req: UploadSegment{Toggle: c.toggle}}

	case csSingleSegmentUploaded, csMultiplesUploaded:
		return c.deliverUpload()

	case csInitSingleDownload:
		var data [4]byte
		copy(data[:], c.data[:c.downloadLen])
		return Request{Req: InitSingleSegmentDownload{Index: c.index, Len: uint8(c.downloadLen), Data: data}}

	case csInitMultipleDownload:
		return Request{Req: InitMultipleDownload{Index: c.index, TotalLen: uint32(c.downloadLen)}}

	case csDownloadingSegments:
		ix0 := c.dataIndex
		ix1 := ix0 + 7
		if ix1 > c.downloadLen {
			ix1 = c.downloadLen
		}
		last := ix0+7 >= c.downloadLen
		var data [7]byte
		copy(data[:], c.data[ix0:ix1])
		return Request{Req: DownloadSegment{Toggle: c.toggle, Last: last, Len: uint8(ix1 - ix0), Data: data}}

	case csDownloadCompleted:
		return c.deliverDownload()

	case csAborted:
		return c.deliverAbort()

	case csErrorState:
		return c.deliverFailure()

	default:
		return Ready{}
	}
}

func (c *ClientMachine) deliverUpload() Observation {
	result := UploadCompleted{Index: c.index, Data: append([]byte(nil), c.data[:c.dataIndex]...)}
	if !c.delivered {
		if c.readResponder != nil {
			c.readResponder.Respond(ReadOutcome{Result: ReadResult{Index: result.Index, Data: result.Data}})
		}
		c.delivered = true
	}
	return Done{Result: result}
}

func (c *ClientMachine) deliverDownload() Observation {
	result := DownloadCompleted{Index: c.index}
	if !c.delivered {
		if c.writeResponder != nil {
			c.writeResponder.Respond(WriteOutcome{Result: WriteResult{Index: result.Index}})
		}
		c.delivered = true
	}
	return Done{Result: result}
}

func (c *ClientMachine) deliverAbort() Observation {
	result := TransferAborted{Index: c.index, Code: c.abortCode}
	if !c.delivered {
		err := &MachineError{Kind: Aborted, Abort: c.abortCode}
		if c.readResponder != nil {
			c.readResponder.Respond(ReadOutcome{Err: err})
		}
		if c.writeResponder != nil {
			c.writeResponder.Respond(WriteOutcome{Err: err})
		}
		c.delivered = true
	}
	return Done{Result: result}
}

func (c *ClientMachine) deliverFailure() Observation {
	if !c.delivered {
		if c.readResponder != nil {
			c.readResponder.Respond(ReadOutcome{Err: c.err})
		}
		if c.writeResponder != nil {
			c.writeResponder.Respond(WriteOutcome{Err: c.err})
		}
		c.delivered = true
	}
	return Failed{Err: c.err}
}
