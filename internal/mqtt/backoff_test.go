package mqtt

import (
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-agent/internal/infrastructure/config"
)

func TestBackoff_DoublesUntilCap(t *testing.T) {
	curve := newBackoff(config.MQTTReconnectConfig{
		InitialDelay: 1,
		MaxDelay:     8,
		Jitter:       0,
	})

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		8 * time.Second, // capped
		8 * time.Second,
	}
	for i, w := range want {
		if got := curve.Next(); got != w {
			t.Errorf("Next() #%d = %v, want %v", i+1, got, w)
		}
	}
}

func TestBackoff_Reset(t *testing.T) {
	curve := newBackoff(config.MQTTReconnectConfig{
		InitialDelay: 1,
		MaxDelay:     60,
		Jitter:       0,
	})

	curve.Next()
	curve.Next()
	curve.Reset()

	if got := curve.Next(); got != time.Second {
		t.Errorf("Next() after Reset = %v, want 1s", got)
	}
}

func TestBackoff_JitterBounds(t *testing.T) {
	curve := newBackoff(config.MQTTReconnectConfig{
		InitialDelay: 10,
		MaxDelay:     10,
		Jitter:       0.2,
	})

	lo := time.Duration(float64(10*time.Second) * 0.8)
	hi := time.Duration(float64(10*time.Second) * 1.2)
	for i := 0; i < 100; i++ {
		d := curve.Next()
		if d < lo || d > hi {
			t.Fatalf("Next() #%d = %v, want within [%v, %v]", i+1, d, lo, hi)
		}
	}
}
