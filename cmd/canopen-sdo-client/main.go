// Command canopen-sdo-client issues a single SDO read or write against
// a remote CANopen node over the CAN interface driver chosen with -i
// (SocketCAN by default).
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/canopenio/sdoclient/pkg/can"
	_ "github.com/canopenio/sdoclient/pkg/can/socketcan"
	_ "github.com/canopenio/sdoclient/pkg/can/socketcanring"
	_ "github.com/canopenio/sdoclient/pkg/can/socketcanv2"
	_ "github.com/canopenio/sdoclient/pkg/can/socketcanv3"
	_ "github.com/canopenio/sdoclient/pkg/can/virtual"
	"github.com/canopenio/sdoclient/pkg/client"
	"github.com/canopenio/sdoclient/pkg/config"
	"github.com/canopenio/sdoclient/pkg/dict"
	"github.com/canopenio/sdoclient/pkg/heartbeat"
	"github.com/canopenio/sdoclient/pkg/sdo"
	"github.com/sirupsen/logrus"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to an INI connection-set file (overrides -i/-node)")
		iface      = flag.String("i", "socketcan", "CAN interface driver: socketcan (brutella/can), socketcanv2, socketcanv3, socketcanring (raw AF_CAN sockets), virtual")
		channel    = flag.String("channel", "can0", "interface channel, e.g. can0 or host:port for virtual")
		node       = flag.Uint("node", 0x22, "target node ID")
		index      = flag.String("index", "", "object dictionary index as XXXX:XX, e.g. 1018:01")
		write      = flag.String("write", "", "hex-encoded bytes to write; if empty, performs a read")
		timeout    = flag.Duration("timeout", time.Second, "transfer timeout")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	log := logrus.StandardLogger()
	if *debug {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.WithError(err).Fatal("failed to load config")
		}
		cfg = loaded
	} else {
		cfg.Interface = *iface
		cfg.Channel = *channel
		cfg.NodeID = uint8(*node)
		cfg.SDOTimeout = *timeout
	}

	if *index == "" {
		log.Fatal("missing -index")
	}
	objIndex, err := parseIndex(*index)
	if err != nil {
		log.WithError(err).Fatal("invalid -index")
	}

	bus, err := can.NewBus(cfg.Interface, cfg.Channel, 0)
	if err != nil {
		log.WithError(err).Fatal("failed to open CAN interface")
	}
	if err := bus.Connect(); err != nil {
		log.WithError(err).Fatal("failed to connect to CAN interface")
	}
	defer bus.Disconnect()

	hb := heartbeat.NewConsumer(func(ev heartbeat.Event) {
		log.WithFields(logrus.Fields{"node": ev.NodeID, "state": ev.State}).Debug("heartbeat")
	}, cfg.MonitoredNodes...)
	d := dict.NewMemory()
	c := client.New(bus, cfg.NodeID, d, hb, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go c.Run(ctx)

	runCtx, cancel := context.WithTimeout(ctx, cfg.SDOTimeout)
	defer cancel()

	if *write != "" {
		data, err := hex.DecodeString(*write)
		if err != nil {
			log.WithError(err).Fatal("invalid -write hex payload")
		}
		if _, err := c.Write(runCtx, objIndex, data); err != nil {
			log.WithError(err).Fatal("write failed")
		}
		fmt.Printf("wrote %d bytes to %s\n", len(data), objIndex)
		return
	}

	result, err := c.Read(runCtx, objIndex)
	if err != nil {
		log.WithError(err).Fatal("read failed")
	}
	fmt.Printf("%s = %s\n", objIndex, hex.EncodeToString(result.Data))
}

// parseIndex parses "XXXX:XX" (4 hex digits, colon, 2 hex digits)
// into a sdo.Index.
func parseIndex(s string) (sdo.Index, error) {
	if len(s) < 6 || s[4] != ':' {
		return sdo.Index{}, fmt.Errorf("expected format XXXX:XX, got %q", s)
	}
	idx, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return sdo.Index{}, fmt.Errorf("invalid index %q: %w", s[:4], err)
	}
	sub, err := strconv.ParseUint(s[5:], 16, 8)
	if err != nil {
		return sdo.Index{}, fmt.Errorf("invalid subindex %q: %w", s[5:], err)
	}
	return sdo.NewIndex(uint16(idx), uint8(sub)), nil
}
