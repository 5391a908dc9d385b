package cobid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeBroadcast(t *testing.T) {
	require.Equal(t, NewBroadcast(NMT), Decode(0x000))
	require.Equal(t, NewBroadcast(Sync), Decode(0x080))
}

func TestDecodeNodeCommands(t *testing.T) {
	cases := []struct {
		cobID uint32
		want  FunCode
	}{
		{0x080 + 5, NewNodeCmd(Emergency, 5)},
		{0x580 + 0x22, NewNodeCmd(SdoResp, 0x22)},
		{0x600 + 0x22, NewNodeCmd(SdoReq, 0x22)},
		{0x700 + 1, NewNodeCmd(Heartbeat, 1)},
		{0x180 + 3, NewNodeCmd(Pdo1Tx, 3)},
	}
	for _, c := range cases {
		require.Equal(t, c.want, Decode(c.cobID))
	}
}

func TestDecodeUnusedFallback(t *testing.T) {
	got := Decode(0x780 | 0x0A)
	require.Equal(t, NewNodeCmd(Unused, 0x0A), got)
}

func TestEncodeRoundTrip(t *testing.T) {
	cases := []FunCode{
		NewBroadcast(NMT),
		NewBroadcast(Sync),
		NewNodeCmd(SdoReq, 0x22),
		NewNodeCmd(SdoResp, 0x22),
		NewNodeCmd(Heartbeat, 0x7F),
	}
	for _, fc := range cases {
		cobID, err := fc.Encode()
		require.NoError(t, err)
		require.Equal(t, fc, Decode(cobID))
	}
}

func TestEncodeSdoServerSideCobIDs(t *testing.T) {
	// CiA 301 default SDO COB-IDs for node 0x22: request travels
	// client->server on 0x600+node, response on 0x580+node.
	req, err := NewNodeCmd(SdoReq, 0x22).Encode()
	require.NoError(t, err)
	require.Equal(t, uint32(0x622), req)

	resp, err := NewNodeCmd(SdoResp, 0x22).Encode()
	require.NoError(t, err)
	require.Equal(t, uint32(0x5A2), resp)
}

func TestEncodeRejectsOutOfRangeNodeID(t *testing.T) {
	_, err := NewNodeCmd(SdoReq, 128).Encode()
	require.Error(t, err)

	_, err = NewNodeCmd(Heartbeat, 255).Encode()
	require.Error(t, err)
}

func TestEncodeBroadcastIgnoresNodeID(t *testing.T) {
	// A broadcast FunCode never carries a meaningful NodeID, so it
	// can never fail to encode regardless of the zero value's range.
	cobID, err := NewBroadcast(NMT).Encode()
	require.NoError(t, err)
	require.Equal(t, uint32(0x000), cobID)
}
