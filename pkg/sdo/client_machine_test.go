package sdo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientMachineUploadExpedited(t *testing.T) {
	m := NewClientMachine()
	responder := NewChanResponder[ReadOutcome]()
	require.NoError(t, m.Read(NewIndex(0x1000, 0x01), responder))

	req, ok := m.Observe().(Request)
	require.True(t, ok)
	require.Equal(t, InitUpload{Index: NewIndex(0x1000, 0x01)}, req.Req)

	m.Transit(UploadSingleSegment{Index: NewIndex(0x1000, 0x01), N: 2, Data: [4]byte{0xAA, 0xBB, 0, 0}})

	done, ok := m.Observe().(Done)
	require.True(t, ok)
	require.Equal(t, UploadCompleted{Index: NewIndex(0x1000, 0x01), Data: []byte{0xAA, 0xBB}}, done.Result)

	select {
	case out := <-responder:
		require.NoError(t, out.Err)
		require.Equal(t, []byte{0xAA, 0xBB}, out.Result.Data)
	default:
		t.Fatal("responder was not delivered")
	}

	require.True(t, m.IsReady())
}

func TestClientMachineUploadSegmented(t *testing.T) {
	m := NewClientMachine()
	responder := NewChanResponder[ReadOutcome]()
	require.NoError(t, m.Read(NewIndex(0x1018, 0x01), responder))

	_, ok := m.Observe().(Request)
	require.True(t, ok)

	m.Transit(UploadInitMultiples{Index: NewIndex(0x1018, 0x01), Size: 10})

	req, ok := m.Observe().(Request)
	require.True(t, ok)
	require.Equal(t, UploadSegment{Toggle: false}, req.Req)

	m.Transit(UploadMultiples{Toggle: false, Last: false, Len: 7, Data: [7]byte{1, 2, 3, 4, 5, 6, 7}})

	req, ok = m.Observe().(Request)
	require.True(t, ok)
	require.Equal(t, UploadSegment{Toggle: true}, req.Req)

	m.Transit(UploadMultiples{Toggle: true, Last: true, Len: 3, Data: [7]byte{8, 9, 10, 0, 0, 0, 0}})

	done, ok := m.Observe().(Done)
	require.True(t, ok)
	require.Equal(t, UploadCompleted{
		Index: NewIndex(0x1018, 0x01),
		Data:  []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	}, done.Result)
}

func TestClientMachineDownloadExpedited(t *testing.T) {
	m := NewClientMachine()
	responder := NewChanResponder[WriteOutcome]()
	require.NoError(t, m.Write(NewIndex(0x2000, 0x00), []byte{1, 2, 3}, responder))

	req, ok := m.Observe().(Request)
	require.True(t, ok)
	require.Equal(t, InitSingleSegmentDownload{Index: NewIndex(0x2000, 0x00), Len: 3, Data: [4]byte{1, 2, 3, 0}}, req.Req)

	m.Transit(DownloadInitAck{Index: NewIndex(0x2000, 0x00)})

	done, ok := m.Observe().(Done)
	require.True(t, ok)
	require.Equal(t, DownloadCompleted{Index: NewIndex(0x2000, 0x00)}, done.Result)

	select {
	case out := <-responder:
		require.NoError(t, out.Err)
	default:
		t.Fatal("responder was not delivered")
	}
}

func TestClientMachineDownloadSegmented(t *testing.T) {
	m := NewClientMachine()
	data := make([]byte, 10)
	for i := range data {
		data[i] = byte(i + 1)
	}
	require.NoError(t, m.Write(NewIndex(0x2001, 0x00), data, nil))

	req, ok := m.Observe().(Request)
	require.True(t, ok)
	require.Equal(t, InitMultipleDownload{Index: NewIndex(0x2001, 0x00), TotalLen: 10}, req.Req)

	m.Transit(DownloadInitAck{Index: NewIndex(0x2001, 0x00)})

	req, ok = m.Observe().(Request)
	require.True(t, ok)
	seg := req.Req.(DownloadSegment)
	require.False(t, seg.Toggle)
	require.False(t, seg.Last)
	require.Equal(t, uint8(7), seg.Len)
	require.Equal(t, [7]byte{1, 2, 3, 4, 5, 6, 7}, seg.Data)

	m.Transit(DownloadSegmentAck{Toggle: false})

	req, ok = m.Observe().(Request)
	require.True(t, ok)
	seg = req.Req.(DownloadSegment)
	require.True(t, seg.Toggle)
	require.True(t, seg.Last)
	require.Equal(t, uint8(3), seg.Len)
	require.Equal(t, [7]byte{8, 9, 10, 0, 0, 0, 0}, seg.Data)

	m.Transit(DownloadSegmentAck{Toggle: true})

	done, ok := m.Observe().(Done)
	require.True(t, ok)
	require.Equal(t, DownloadCompleted{Index: NewIndex(0x2001, 0x00)}, done.Result)
}

func TestClientMachineToggleMismatch(t *testing.T) {
	m := NewClientMachine()
	require.NoError(t, m.Read(NewIndex(0x1018, 0x01), nil))
	m.Observe()
	m.Transit(UploadInitMultiples{Index: NewIndex(0x1018, 0x01), Size: 10})
	m.Observe()

	m.Transit(UploadMultiples{Toggle: true, Last: false, Len: 7, Data: [7]byte{1, 2, 3, 4, 5, 6, 7}})

	failed, ok := m.Observe().(Failed)
	require.True(t, ok)
	require.Equal(t, ToggleMismatch, failed.Err.Kind)
}

func TestClientMachineIndexMismatch(t *testing.T) {
	m := NewClientMachine()
	require.NoError(t, m.Read(NewIndex(0x1000, 0x01), nil))
	m.Observe()

	m.Transit(UploadSingleSegment{Index: NewIndex(0x1001, 0x01), N: 1, Data: [4]byte{1, 0, 0, 0}})

	failed, ok := m.Observe().(Failed)
	require.True(t, ok)
	require.Equal(t, IndexMismatch, failed.Err.Kind)
	require.Equal(t, NewIndex(0x1001, 0x01), failed.Err.Got)
	require.Equal(t, NewIndex(0x1000, 0x01), failed.Err.Want)
}

func TestClientMachineBufferOverflow(t *testing.T) {
	m := NewClientMachine()
	require.NoError(t, m.Read(NewIndex(0x1018, 0x01), nil))
	m.Observe()
	m.Transit(UploadInitMultiples{Index: NewIndex(0x1018, 0x01), Size: 0})
	m.Observe()

	// Feed more 7-byte segments than the 1024-byte buffer can hold,
	// without ever setting Last, to overflow the receive buffer.
	for i := 0; i < 147; i++ {
		toggle := m.toggle
		m.Transit(UploadMultiples{Toggle: toggle, Last: false, Len: 7, Data: [7]byte{1, 2, 3, 4, 5, 6, 7}})
		if _, failed := m.Observe().(Failed); failed {
			break
		}
	}

	failed, ok := m.Observe().(Failed)
	require.True(t, ok)
	require.Equal(t, BufferOverflow, failed.Err.Kind)
}

func TestClientMachineStateResponseMismatch(t *testing.T) {
	m := NewClientMachine()
	require.NoError(t, m.Read(NewIndex(0x1000, 0x01), nil))
	m.Observe()

	m.Transit(DownloadInitAck{Index: NewIndex(0x1000, 0x01)})

	failed, ok := m.Observe().(Failed)
	require.True(t, ok)
	require.Equal(t, StateResponseMismatch, failed.Err.Kind)
}

func TestClientMachinePeerAbort(t *testing.T) {
	m := NewClientMachine()
	responder := NewChanResponder[ReadOutcome]()
	require.NoError(t, m.Read(NewIndex(0x1000, 0x01), responder))
	m.Observe()

	m.Transit(AbortTransferResponse{Index: NewIndex(0x1000, 0x01), Code: ObjectDoesNotExist})

	done, ok := m.Observe().(Done)
	require.True(t, ok)
	require.Equal(t, TransferAborted{Index: NewIndex(0x1000, 0x01), Code: ObjectDoesNotExist}, done.Result)

	select {
	case out := <-responder:
		require.Error(t, out.Err)
		var merr *MachineError
		require.ErrorAs(t, out.Err, &merr)
		require.Equal(t, Aborted, merr.Kind)
	default:
		t.Fatal("responder was not delivered")
	}

	require.True(t, m.IsReady())
}

func TestClientMachineRejectsConcurrentCommand(t *testing.T) {
	m := NewClientMachine()
	require.NoError(t, m.Read(NewIndex(0x1000, 0x01), nil))

	err := m.Read(NewIndex(0x1001, 0x01), nil)
	require.ErrorIs(t, err, ErrClientBusy)

	err = m.Write(NewIndex(0x1001, 0x01), []byte{1}, nil)
	require.ErrorIs(t, err, ErrClientBusy)
}

func TestClientMachineReadyAfterTerminalStateAcceptsNewCommand(t *testing.T) {
	m := NewClientMachine()
	require.NoError(t, m.Read(NewIndex(0x1000, 0x01), nil))
	m.Observe()
	m.Transit(UploadSingleSegment{Index: NewIndex(0x1000, 0x01), N: 1, Data: [4]byte{1, 0, 0, 0}})
	m.Observe()

	require.True(t, m.IsReady())
	require.NoError(t, m.Read(NewIndex(0x2000, 0x00), nil))
	req, ok := m.Observe().(Request)
	require.True(t, ok)
	require.Equal(t, InitUpload{Index: NewIndex(0x2000, 0x00)}, req.Req)
}

func TestClientMachineWriteRejectsOversizedData(t *testing.T) {
	m := NewClientMachine()
	err := m.Write(NewIndex(0x2000, 0x00), make([]byte, clientBufferSize+1), nil)
	require.ErrorIs(t, err, ErrWriteTooLarge)
}

func TestClientMachineInitialUnblocksInFlightTransfer(t *testing.T) {
	m := NewClientMachine()
	responder := NewChanResponder[ReadOutcome]()
	require.NoError(t, m.Read(NewIndex(0x1000, 0x01), responder))
	_, ok := m.Observe().(Request)
	require.True(t, ok)

	m.Initial()

	select {
	case out := <-responder:
		require.ErrorIs(t, out.Err, ErrReset)
	default:
		t.Fatal("responder was not delivered")
	}

	require.True(t, m.IsReady())
	_, ok = m.Observe().(Ready)
	require.True(t, ok)
}

func TestClientMachineInitialOnIdleIsNoop(t *testing.T) {
	m := NewClientMachine()
	m.Initial()
	require.True(t, m.IsReady())
	_, ok := m.Observe().(Ready)
	require.True(t, ok)
}
