// Package cobid decodes and encodes the 11-bit CAN identifiers CiA 301
// reserves for the predefined connection set: one function code in the
// top 4 bits, one node ID in the bottom 7.
package cobid

import "fmt"

// nodeMask isolates the 7-bit node ID; funMask isolates the 4-bit
// function code, already shifted into its bit-7 position.
const (
	nodeMask = 0x7F
	funMask  = 0x780
)

// maxNodeID is the largest node ID CiA 301's 7-bit field can carry.
const maxNodeID = 127

// BroadcastCmd is a function code with no associated node ID.
type BroadcastCmd uint8

const (
	NMT BroadcastCmd = iota
	Sync
)

// NodeCmd is a function code addressed to, or originating from, a
// single node.
type NodeCmd uint8

const (
	Emergency NodeCmd = iota
	Time
	Pdo1Tx
	Pdo1Rx
	Pdo2Tx
	Pdo2Rx
	Pdo3Tx
	Pdo3Rx
	Pdo4Tx
	Pdo4Rx
	SdoResp
	SdoReq
	Heartbeat
	Unused
)

var nodeCmdBits = map[NodeCmd]uint32{
	Emergency: 0x080,
	Time:      0x100,
	Pdo1Tx:    0x180,
	Pdo1Rx:    0x200,
	Pdo2Tx:    0x280,
	Pdo2Rx:    0x300,
	Pdo3Tx:    0x380,
	Pdo3Rx:    0x400,
	Pdo4Tx:    0x480,
	Pdo4Rx:    0x500,
	SdoResp:   0x580,
	SdoReq:    0x600,
	Heartbeat: 0x700,
	Unused:    0x000,
}

var bitsToNodeCmd = func() map[uint32]NodeCmd {
	m := make(map[uint32]NodeCmd, len(nodeCmdBits))
	for cmd, bits := range nodeCmdBits {
		m[bits] = cmd
	}
	return m
}()

// FunCode is the decoded form of a CAN identifier under the
// predefined connection set: either a broadcast with no node, or a
// per-node command addressed to Node.
type FunCode struct {
	Broadcast BroadcastCmd
	Node      NodeCmd
	NodeID    uint8
	isNode    bool
}

// IsBroadcast reports whether this FunCode carries no node ID.
func (f FunCode) IsBroadcast() bool { return !f.isNode }

// NewBroadcast builds a broadcast FunCode.
func NewBroadcast(cmd BroadcastCmd) FunCode {
	return FunCode{Broadcast: cmd}
}

// NewNodeCmd builds a FunCode addressed to node id.
func NewNodeCmd(cmd NodeCmd, id uint8) FunCode {
	return FunCode{Node: cmd, NodeID: id, isNode: true}
}

// Decode recovers a FunCode from an 11-bit CAN identifier. NMT (0x000)
// and SYNC (0x080 with node 0) are recognized as broadcasts; anything
// else decodes to a per-node command, falling back to Unused when the
// function part matches none of the predefined codes.
func Decode(cobID uint32) FunCode {
	fun := cobID & funMask
	node := cobID & nodeMask

	switch {
	case fun == 0x000:
		return NewBroadcast(NMT)
	case fun == 0x080 && node == 0x00:
		return NewBroadcast(Sync)
	}

	cmd, ok := bitsToNodeCmd[fun]
	if !ok {
		cmd = Unused
	}
	return NewNodeCmd(cmd, uint8(node))
}

// Encode renders a FunCode back into its 11-bit CAN identifier. It
// fails only when asked to encode a node ID that does not fit in the
// 7-bit field (>= 128); a broadcast FunCode's NodeID is never consulted
// and so can never fail.
func (f FunCode) Encode() (uint32, error) {
	if !f.isNode {
		switch f.Broadcast {
		case Sync:
			return 0x080, nil
		default:
			return 0x000, nil
		}
	}
	if f.NodeID > maxNodeID {
		return 0, fmt.Errorf("cobid: invalid node ID %d, must be <= %d", f.NodeID, maxNodeID)
	}
	return nodeCmdBits[f.Node] | uint32(f.NodeID), nil
}
