package health

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Domain-specific errors for health probing and decoding.
var (
	// ErrProbeFailed is returned when a system probe cannot be read.
	ErrProbeFailed = errors.New("health: probe failed")

	// ErrSignalUnavailable is returned by signal sources that cannot measure
	// link strength on this platform.
	ErrSignalUnavailable = errors.New("health: signal strength unavailable")

	// ErrMalformedSnapshot is returned when a payload cannot be decoded.
	ErrMalformedSnapshot = errors.New("health: malformed snapshot")
)

// Snapshot is a point-in-time health report.
//
// Memory values are bytes, uptime is whole seconds, and RSSI is dBm (zero
// when no signal source is available).
type Snapshot struct {
	// FreeMemory is the currently available system memory.
	FreeMemory uint64

	// MinFreeMemory is the lowest available memory observed since the
	// prober was created.
	MinFreeMemory uint64

	// RSSI is the link signal strength in dBm, zero if unavailable.
	RSSI int

	// Uptime is host uptime in seconds.
	Uptime uint64

	// Connected reports whether the broker session was up at probe time.
	Connected bool
}

// Encode serialises the snapshot as compact key=value text:
//
//	free_mem=104857600,min_free_mem=52428800,rssi=-67,uptime=86400,connected=1
func (s Snapshot) Encode() []byte {
	connected := 0
	if s.Connected {
		connected = 1
	}
	return fmt.Appendf(nil, "free_mem=%d,min_free_mem=%d,rssi=%d,uptime=%d,connected=%d",
		s.FreeMemory,
		s.MinFreeMemory,
		s.RSSI,
		s.Uptime,
		connected,
	)
}

// Decode parses a payload produced by Encode.
//
// Unknown keys are ignored so the format can grow; missing required keys or
// unparseable values return ErrMalformedSnapshot.
func Decode(payload []byte) (Snapshot, error) {
	var snap Snapshot
	var haveFree, haveUptime bool

	for _, field := range strings.Split(string(payload), ",") {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return Snapshot{}, fmt.Errorf("%w: field %q", ErrMalformedSnapshot, field)
		}

		switch key {
		case "free_mem":
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return Snapshot{}, fmt.Errorf("%w: free_mem: %w", ErrMalformedSnapshot, err)
			}
			snap.FreeMemory = n
			haveFree = true
		case "min_free_mem":
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return Snapshot{}, fmt.Errorf("%w: min_free_mem: %w", ErrMalformedSnapshot, err)
			}
			snap.MinFreeMemory = n
		case "rssi":
			n, err := strconv.Atoi(value)
			if err != nil {
				return Snapshot{}, fmt.Errorf("%w: rssi: %w", ErrMalformedSnapshot, err)
			}
			snap.RSSI = n
		case "uptime":
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return Snapshot{}, fmt.Errorf("%w: uptime: %w", ErrMalformedSnapshot, err)
			}
			snap.Uptime = n
			haveUptime = true
		case "connected":
			snap.Connected = value == "1"
		}
	}

	if !haveFree || !haveUptime {
		return Snapshot{}, fmt.Errorf("%w: missing required fields", ErrMalformedSnapshot)
	}

	return snap, nil
}
