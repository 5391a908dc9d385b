package heartbeat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConsumerForwardsDecodedState(t *testing.T) {
	var got []Event
	c := NewConsumer(func(e Event) { got = append(got, e) })

	c.Handle(0x22, [8]byte{byte(Operational)})
	c.Handle(0x05, [8]byte{byte(Bootup)})

	require.Equal(t, []Event{
		{NodeID: 0x22, State: Operational},
		{NodeID: 0x05, State: Bootup},
	}, got)
}

func TestConsumerFiltersToMonitoredNodes(t *testing.T) {
	var got []Event
	c := NewConsumer(func(e Event) { got = append(got, e) }, 0x22, 0x05)

	c.Handle(0x22, [8]byte{byte(Operational)})
	c.Handle(0x7F, [8]byte{byte(Bootup)})
	c.Handle(0x05, [8]byte{byte(Stopped)})

	require.Equal(t, []Event{
		{NodeID: 0x22, State: Operational},
		{NodeID: 0x05, State: Stopped},
	}, got)
}

func TestConsumerNilCallbackDoesNotPanic(t *testing.T) {
	c := NewConsumer(nil)
	require.NotPanics(t, func() { c.Handle(0x01, [8]byte{byte(Stopped)}) })
}

func TestStateString(t *testing.T) {
	require.Equal(t, "Operational", Operational.String())
	require.Equal(t, "Unknown", State(0x42).String())
}
