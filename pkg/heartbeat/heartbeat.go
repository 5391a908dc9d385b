// Package heartbeat decodes the 1-byte NMT state carried in a CiA 301
// heartbeat payload and forwards it to a caller-supplied callback.
// Per-node timeout supervision is not this package's job; it belongs to
// whatever external collaborator schedules heartbeat expectations.
package heartbeat

// State is the NMT state a node reports in its heartbeat byte.
type State uint8

const (
	Bootup         State = 0x00
	Stopped        State = 0x04
	Operational    State = 0x05
	PreOperational State = 0x7F
)

func (s State) String() string {
	switch s {
	case Bootup:
		return "Bootup"
	case Stopped:
		return "Stopped"
	case Operational:
		return "Operational"
	case PreOperational:
		return "PreOperational"
	default:
		return "Unknown"
	}
}

// Event is one heartbeat observation: the node that sent it and the
// NMT state it reported.
type Event struct {
	NodeID uint8
	State  State
}

// Callback receives every heartbeat Event as it is decoded.
type Callback func(Event)

// Consumer forwards decoded heartbeat events to a Callback. It keeps no
// per-node state of its own beyond the optional monitored-node allowlist
// it was built with.
type Consumer struct {
	callback  Callback
	monitored map[uint8]bool
}

// NewConsumer builds a Consumer that forwards every decoded heartbeat
// to cb. cb may be nil, in which case heartbeats are decoded and
// discarded. If monitored is non-empty, Handle forwards only nodes
// named in it; an empty monitored list forwards every node, matching a
// connection-set with no [heartbeat] section configured.
func NewConsumer(cb Callback, monitored ...uint8) *Consumer {
	c := &Consumer{callback: cb}
	if len(monitored) > 0 {
		c.monitored = make(map[uint8]bool, len(monitored))
		for _, id := range monitored {
			c.monitored[id] = true
		}
	}
	return c
}

// Handle decodes the heartbeat payload from nodeID and forwards it,
// unless a monitored-node allowlist is set and nodeID is not in it.
func (c *Consumer) Handle(nodeID uint8, data [8]byte) {
	if c.callback == nil {
		return
	}
	if c.monitored != nil && !c.monitored[nodeID] {
		return
	}
	c.callback(Event{NodeID: nodeID, State: State(data[0])})
}
