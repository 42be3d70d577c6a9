package health

import (
	"context"
	"fmt"
	"sync"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// SignalSource reports link signal strength.
//
// Measuring RSSI is platform-specific (wireless NIC drivers, modem AT
// commands), so the source is pluggable; the default reports unavailable and
// the snapshot carries zero.
type SignalSource interface {
	// RSSI returns the current signal strength in dBm.
	RSSI(ctx context.Context) (int, error)
}

// NoSignal is the default SignalSource for hosts without a measurable link.
type NoSignal struct{}

// RSSI always returns ErrSignalUnavailable.
func (NoSignal) RSSI(context.Context) (int, error) {
	return 0, ErrSignalUnavailable
}

// Prober collects host health snapshots.
//
// It tracks the historical minimum of available memory across its lifetime,
// which surfaces slow leaks that a point-in-time reading would hide.
//
// Thread Safety:
//   - Snapshot is safe for concurrent use.
type Prober struct {
	signal SignalSource

	mu      sync.Mutex
	minFree uint64
	probed  bool
}

// NewProber creates a prober.
//
// Parameters:
//   - signal: Signal strength source; nil selects NoSignal
func NewProber(signal SignalSource) *Prober {
	if signal == nil {
		signal = NoSignal{}
	}
	return &Prober{signal: signal}
}

// Snapshot probes the host and returns a point-in-time health report.
//
// A signal source failure is not a probe failure; the snapshot simply
// carries RSSI zero. Memory and uptime probes failing is an error.
//
// Parameters:
//   - ctx: Cancellation context for the system probes
//   - connected: Whether the broker session is currently up
//
// Returns:
//   - Snapshot: Point-in-time health values
//   - error: ErrProbeFailed (wrapped) if a system probe cannot be read
func (p *Prober) Snapshot(ctx context.Context, connected bool) (Snapshot, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: memory: %w", ErrProbeFailed, err)
	}

	uptime, err := host.UptimeWithContext(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: uptime: %w", ErrProbeFailed, err)
	}

	rssi, err := p.signal.RSSI(ctx)
	if err != nil {
		rssi = 0
	}

	p.mu.Lock()
	if !p.probed || vm.Available < p.minFree {
		p.minFree = vm.Available
		p.probed = true
	}
	minFree := p.minFree
	p.mu.Unlock()

	return Snapshot{
		FreeMemory:    vm.Available,
		MinFreeMemory: minFree,
		RSSI:          rssi,
		Uptime:        uptime,
		Connected:     connected,
	}, nil
}
