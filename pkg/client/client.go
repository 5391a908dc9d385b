// Package client implements the single-threaded SDO client dispatch
// loop: it pumps host commands and inbound CAN frames into a
// sdo.ClientMachine, routes inbound traffic by COB-ID, and turns
// machine observations into outbound frames or delivered results.
package client

import (
	"context"
	"fmt"

	can "github.com/canopenio/sdoclient/pkg/can"
	"github.com/canopenio/sdoclient/pkg/cobid"
	"github.com/canopenio/sdoclient/pkg/dict"
	"github.com/canopenio/sdoclient/pkg/heartbeat"
	"github.com/canopenio/sdoclient/pkg/sdo"
	"github.com/sirupsen/logrus"
)

// Transport is the collaborator a Client pumps frames through. Any
// can.Bus satisfies it.
type Transport interface {
	Send(frame can.Frame) error
	Subscribe(listener can.FrameListener) error
}

type commandKind int

const (
	cmdRead commandKind = iota
	cmdWrite
	cmdReset
)

type command struct {
	kind           commandKind
	index          sdo.Index
	data           []byte
	readResponder  sdo.Responder[sdo.ReadOutcome]
	writeResponder sdo.Responder[sdo.WriteOutcome]
}

// Client is one SDO master talking to a single remote node over a
// Transport. It is not safe for concurrent Read/Write calls from
// multiple goroutines: the dispatch loop serializes everything onto
// one internal command channel, but two overlapping callers would
// race on which one's command is rejected with ErrClientBusy.
type Client struct {
	node      uint8
	transport Transport
	machine   *sdo.ClientMachine
	dict      dict.Dictionary
	heartbeat *heartbeat.Consumer
	log       *logrus.Entry

	commands chan command
	inbound  chan can.Frame
}

// New builds a Client targeting node over transport. dictionary and
// hb may be nil; a nil dictionary means upload results are only
// delivered to the caller's responder, never cached, and a nil hb
// means heartbeat frames are decoded and dropped.
func New(transport Transport, node uint8, dictionary dict.Dictionary, hb *heartbeat.Consumer, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		node:      node,
		transport: transport,
		machine:   sdo.NewClientMachine(),
		dict:      dictionary,
		heartbeat: hb,
		log:       log.WithField("component", "sdo-client"),
		commands:  make(chan command),
		inbound:   make(chan can.Frame, 16),
	}
}

// Handle implements can.FrameListener. It is called from the
// transport's own receive goroutine, so it only ever hands the frame
// off to the dispatch loop; a full inbound buffer drops the frame
// rather than blocking the transport.
func (c *Client) Handle(frame can.Frame) {
	select {
	case c.inbound <- frame:
	default:
		c.log.Warn("inbound frame dropped, dispatch loop is behind")
	}
}

// Run subscribes to the transport and pumps events until ctx is
// cancelled. It returns ctx.Err() on cancellation.
func (c *Client) Run(ctx context.Context) error {
	if err := c.transport.Subscribe(c); err != nil {
		return fmt.Errorf("client: subscribe transport: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame := <-c.inbound:
			c.handleFrame(frame)
		case cmd := <-c.commands:
			c.handleCommand(cmd)
		}
	}
}

// Read requests the object at index from the remote node and blocks
// until the transfer completes, fails, or ctx is cancelled.
func (c *Client) Read(ctx context.Context, index sdo.Index) (sdo.ReadResult, error) {
	responder := sdo.NewChanResponder[sdo.ReadOutcome]()
	cmd := command{kind: cmdRead, index: index, readResponder: responder}
	select {
	case c.commands <- cmd:
	case <-ctx.Done():
		return sdo.ReadResult{}, ctx.Err()
	}
	select {
	case out := <-responder:
		return out.Result, out.Err
	case <-ctx.Done():
		return sdo.ReadResult{}, ctx.Err()
	}
}

// Write sends data to the object at index on the remote node and
// blocks until the transfer completes, fails, or ctx is cancelled.
func (c *Client) Write(ctx context.Context, index sdo.Index, data []byte) (sdo.WriteResult, error) {
	responder := sdo.NewChanResponder[sdo.WriteOutcome]()
	cmd := command{kind: cmdWrite, index: index, data: data, writeResponder: responder}
	select {
	case c.commands <- cmd:
	case <-ctx.Done():
		return sdo.WriteResult{}, ctx.Err()
	}
	select {
	case out := <-responder:
		return out.Result, out.Err
	case <-ctx.Done():
		return sdo.WriteResult{}, ctx.Err()
	}
}

// Reset forces the client's machine back to Idle, delivering ErrReset
// to any Read or Write currently in flight. It is meant to be called by
// an external collaborator supervising transfer timeouts, since the
// dispatch loop itself keeps no timers of its own.
func (c *Client) Reset(ctx context.Context) {
	select {
	case c.commands <- command{kind: cmdReset}:
	case <-ctx.Done():
	}
}

func (c *Client) handleCommand(cmd command) {
	if cmd.kind == cmdReset {
		c.machine.Initial()
		c.log.Debug("sdo client reset to idle")
		return
	}
	var err error
	switch cmd.kind {
	case cmdRead:
		err = c.machine.Read(cmd.index, cmd.readResponder)
	case cmdWrite:
		err = c.machine.Write(cmd.index, cmd.data, cmd.writeResponder)
	}
	if err != nil {
		c.log.WithError(err).Debug("host command rejected")
		// The machine never armed, so it never took ownership of the
		// responder; hand it back here the same way a completed
		// transfer would.
		switch cmd.kind {
		case cmdRead:
			cmd.readResponder.Respond(sdo.ReadOutcome{Err: err})
		case cmdWrite:
			cmd.writeResponder.Respond(sdo.WriteOutcome{Err: err})
		}
		return
	}
	c.pumpObservation()
}

func (c *Client) handleFrame(frame can.Frame) {
	fc := cobid.Decode(frame.ID)
	if fc.IsBroadcast() {
		return
	}
	switch fc.Node {
	case cobid.SdoResp:
		if fc.NodeID != c.node {
			return
		}
		var wire sdo.Frame
		copy(wire[:], frame.Data[:])
		resp, err := sdo.DecodeServerResponse(wire)
		if err != nil {
			c.log.WithError(err).Debug("dropping undecodable sdo response")
			return
		}
		c.machine.Transit(resp)
		c.pumpObservation()
	case cobid.Heartbeat:
		if c.heartbeat != nil {
			c.heartbeat.Handle(fc.NodeID, frame.Data)
		}
	default:
		// PDO/EMCY/NMT traffic is inert for this client.
	}
}

func (c *Client) pumpObservation() {
	switch o := c.machine.Observe().(type) {
	case sdo.Request:
		c.sendRequest(o.Req)
	case sdo.Done:
		c.handleDone(o.Result)
	case sdo.Failed:
		c.log.WithError(o.Err).Warn("sdo transfer failed")
	case sdo.Ready:
	}
}

func (c *Client) sendRequest(req sdo.ClientRequest) {
	payload, err := sdo.EncodeClientRequest(req)
	if err != nil {
		c.log.WithError(err).Warn("failed to encode client request")
		return
	}
	cobID, err := cobid.NewNodeCmd(cobid.SdoReq, c.node).Encode()
	if err != nil {
		c.log.WithError(err).Warn("failed to encode sdo request COB-ID")
		return
	}
	frame := can.NewFrame(cobID, 0, uint8(len(payload)))
	frame.Data = [8]byte(payload)
	if err := c.transport.Send(frame); err != nil {
		c.log.WithError(err).Warn("failed to send sdo request")
	}
}

func (c *Client) handleDone(result sdo.ClientResult) {
	switch r := result.(type) {
	case sdo.UploadCompleted:
		if c.dict != nil {
			c.dict.Set(dict.Object{Index: r.Index, Data: r.Data})
		}
	case sdo.DownloadCompleted:
		// Responder delivery already happened inside the machine.
	case sdo.TransferAborted:
		c.log.WithField("abort", r.Code).Warn("transfer aborted by peer")
	}
}
