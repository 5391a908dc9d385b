// Package config loads the connection-set and node settings an SDO
// client needs to start up, from an INI file in the style of the
// teacher's EDS-adjacent configuration files.
package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

// maxNodeID is the largest node ID CiA 301's 7-bit node ID field can
// carry.
const maxNodeID = 127

// Config is the subset of connection-set configuration this client
// needs: which CAN interface and channel to bind, which node to talk
// SDO to, the default per-transfer timeout, and which nodes to watch
// for heartbeats.
type Config struct {
	Interface      string
	Channel        string
	NodeID         uint8
	SDOTimeout     time.Duration
	MonitoredNodes []uint8
}

// Default returns the zero-configuration starting point: socketcan on
// "can0", node 0x01, a 1 second SDO timeout, no monitored nodes.
func Default() Config {
	return Config{
		Interface:  "socketcan",
		Channel:    "can0",
		NodeID:     0x01,
		SDOTimeout: time.Second,
	}
}

// Load reads a Config from an INI file with a [connection] section
// (interface, channel, node_id, sdo_timeout_ms) and an optional
// [heartbeat] section (monitor, a comma-separated list of node IDs).
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := ini.Load(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}

	conn := f.Section("connection")
	if v := conn.Key("interface").String(); v != "" {
		cfg.Interface = v
	}
	if v := conn.Key("channel").String(); v != "" {
		cfg.Channel = v
	}
	if v, err := conn.Key("node_id").Uint(); err == nil {
		if v > maxNodeID {
			return Config{}, fmt.Errorf("config: node_id %d exceeds CiA 301's 7-bit node ID field (max %d)", v, maxNodeID)
		}
		cfg.NodeID = uint8(v)
	}
	if ms, err := conn.Key("sdo_timeout_ms").Int(); err == nil {
		cfg.SDOTimeout = time.Duration(ms) * time.Millisecond
	}

	if hb := f.Section("heartbeat"); hb != nil {
		if raw := hb.Key("monitor").String(); raw != "" {
			for _, part := range strings.Split(raw, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				var id uint8
				if _, err := fmt.Sscanf(part, "0x%x", &id); err != nil {
					if _, err := fmt.Sscanf(part, "%d", &id); err != nil {
						return Config{}, fmt.Errorf("config: invalid monitored node %q", part)
					}
				}
				if id > maxNodeID {
					return Config{}, fmt.Errorf("config: monitored node %q exceeds CiA 301's 7-bit node ID field (max %d)", part, maxNodeID)
				}
				cfg.MonitoredNodes = append(cfg.MonitoredNodes, id)
			}
		}
	}

	return cfg, nil
}
