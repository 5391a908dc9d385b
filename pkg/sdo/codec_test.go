package sdo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexWireFormat(t *testing.T) {
	ix := NewIndex(0x1234, 0x56)
	buf := make([]byte, 3)
	ix.WriteTo(buf)
	require.Equal(t, []byte{0x34, 0x12, 0x56}, buf)
	require.Equal(t, ix, ReadIndex(buf))
}

func TestIndexRoundTrip(t *testing.T) {
	cases := []Index{
		NewIndex(0x0000, 0x00),
		NewIndex(0xFFFF, 0xFF),
		NewIndex(0x1234, 0x56),
		NewIndex(0xABCD, 0xEF),
	}
	for _, ix := range cases {
		buf := make([]byte, 3)
		ix.WriteTo(buf)
		require.Equal(t, ix, ReadIndex(buf))
	}
}

func TestClientRequestCiA301Vectors(t *testing.T) {
	cases := []struct {
		name string
		req  ClientRequest
		want Frame
	}{
		{
			"init upload",
			InitUpload{Index: NewIndex(0x1000, 0x01)},
			Frame{0x40, 0x00, 0x10, 0x01, 0x00, 0x00, 0x00, 0x00},
		},
		{
			"init single segment download",
			InitSingleSegmentDownload{Index: NewIndex(0x1000, 0x01), Len: 4, Data: [4]byte{1, 2, 3, 4}},
			Frame{0x23, 0x00, 0x10, 0x01, 1, 2, 3, 4},
		},
		{
			"init multiple download",
			InitMultipleDownload{Index: NewIndex(0x1000, 0x01), TotalLen: 10},
			Frame{0x21, 0x00, 0x10, 0x01, 0x0A, 0, 0, 0},
		},
		{
			"abort transfer",
			AbortTransfer{Index: NewIndex(0x1000, 0x01), Code: SdoProtocolTimedOut},
			Frame{0x80, 0x00, 0x10, 0x01, 0x00, 0x00, 0x04, 0x05},
		},
		{
			"download last segment, toggle set",
			DownloadSegment{Toggle: true, Last: true, Len: 7, Data: [7]byte{1, 2, 3, 4, 5, 6, 7}},
			Frame{0x11, 1, 2, 3, 4, 5, 6, 7},
		},
		{
			"download intermediate segment",
			DownloadSegment{Toggle: false, Last: false, Len: 3, Data: [7]byte{1, 2, 3, 4, 5, 6, 7}},
			Frame{0x08, 1, 2, 3, 4, 5, 6, 7},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := EncodeClientRequest(c.req)
			require.NoError(t, err)
			require.Equal(t, c.want, got)

			dec, err := DecodeClientRequest(got)
			require.NoError(t, err)
			require.Equal(t, c.req, dec)
		})
	}
}

func TestServerResponseCiA301Vectors(t *testing.T) {
	cases := []struct {
		name string
		resp ServerResponse
		want Frame
	}{
		{
			"upload single segment",
			UploadSingleSegment{Index: NewIndex(0x1000, 0x01), N: 2, Data: [4]byte{1, 2, 3, 4}},
			Frame{0x4B, 0x00, 0x10, 0x01, 1, 2, 3, 4},
		},
		{
			"upload init multiples, size specified",
			UploadInitMultiples{Index: NewIndex(0x1000, 0x01), Size: 20},
			Frame{0x41, 0x00, 0x10, 0x01, 20, 0, 0, 0},
		},
		{
			"upload init multiples, size unspecified",
			UploadInitMultiples{Index: NewIndex(0x1000, 0x01), Size: 0},
			Frame{0x40, 0x00, 0x10, 0x01, 0, 0, 0, 0},
		},
		{
			"upload last segment",
			UploadMultiples{Toggle: true, Last: true, Len: 5, Data: [7]byte{1, 2, 3, 4, 5, 6, 7}},
			Frame{0x15, 1, 2, 3, 4, 5, 6, 7},
		},
		{
			"upload intermediate segment",
			UploadMultiples{Toggle: false, Last: false, Len: 7, Data: [7]byte{1, 2, 3, 4, 5, 6, 7}},
			Frame{0x00, 1, 2, 3, 4, 5, 6, 7},
		},
		{
			"download init ack",
			DownloadInitAck{Index: NewIndex(0x1000, 0x01)},
			Frame{0x60, 0x00, 0x10, 0x01, 0, 0, 0, 0},
		},
		{
			"download segment ack",
			DownloadSegmentAck{Toggle: true},
			Frame{0x30, 0, 0, 0, 0, 0, 0, 0},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := EncodeServerResponse(c.resp)
			require.NoError(t, err)
			require.Equal(t, c.want, got)

			dec, err := DecodeServerResponse(got)
			require.NoError(t, err)
			require.Equal(t, c.resp, dec)
		})
	}
}

func TestDecodeServerResponseUnsupportedTransferType(t *testing.T) {
	// scs=InitUpload (0x40), e=1 s=0 -> unsupported on the response path.
	f := Frame{0x42, 0x00, 0x10, 0x01, 0, 0, 0, 0}
	_, err := DecodeServerResponse(f)
	require.Error(t, err)
	var utt *UnsupportedTransferTypeError
	require.ErrorAs(t, err, &utt)
}

func TestDecodeClientRequestExpeditedUnsized(t *testing.T) {
	// InitDownload, e=1 s=0: the reference stores length as unspecified (0).
	f := Frame{0x22, 0x00, 0x10, 0x01, 1, 2, 3, 4}
	req, err := DecodeClientRequest(f)
	require.NoError(t, err)
	want := InitSingleSegmentDownload{Index: NewIndex(0x1000, 0x01), Len: 0, Data: [4]byte{1, 2, 3, 4}}
	require.Equal(t, want, req)
}

func TestDecodeUnknownCommandSpecifiers(t *testing.T) {
	_, err := DecodeClientRequest(Frame{0xE0, 0, 0, 0, 0, 0, 0, 0})
	require.Error(t, err)
	var uccs *UnknownClientCommandSpecifierError
	require.ErrorAs(t, err, &uccs)

	_, err = DecodeServerResponse(Frame{0xE0, 0, 0, 0, 0, 0, 0, 0})
	require.Error(t, err)
	var uscs *UnknownServerCommandSpecifierError
	require.ErrorAs(t, err, &uscs)
}

func TestAbortTransferResponseRoundTrip(t *testing.T) {
	resp := AbortTransferResponse{Index: NewIndex(0x1000, 0x01), Code: ObjectDoesNotExist}
	f, err := EncodeServerResponse(resp)
	require.NoError(t, err)

	dec, err := DecodeServerResponse(f)
	require.NoError(t, err)
	require.Equal(t, resp, dec)
}

func TestEncodeInitSingleSegmentDownloadRejectsOutOfRangeLength(t *testing.T) {
	_, err := EncodeClientRequest(InitSingleSegmentDownload{Index: NewIndex(0x1000, 0x01), Len: 5})
	require.ErrorIs(t, err, ErrEncodingArguments)
}

func TestUnknownAbortCodeDecodesToGeneralError(t *testing.T) {
	require.Equal(t, GeneralError, DecodeAbortCode(0xDEADBEEF))
}
