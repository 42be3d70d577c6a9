package router

import (
	"errors"
	"sync"
	"testing"
)

func TestRegisterAndDispatch(t *testing.T) {
	table := NewTable(0)

	var gotTopic string
	var gotPayload []byte
	err := table.Register("demo/central/comandos/#", 1, func(topic string, payload []byte) {
		gotTopic = topic
		gotPayload = append([]byte(nil), payload...)
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	n := table.Dispatch("demo/central/comandos/bomba", []byte("LIGAR"))
	if n != 1 {
		t.Fatalf("Dispatch() invoked %d handlers, want 1", n)
	}
	if gotTopic != "demo/central/comandos/bomba" {
		t.Errorf("handler topic = %q", gotTopic)
	}
	if string(gotPayload) != "LIGAR" || len(gotPayload) != 5 {
		t.Errorf("handler payload = %q (len %d), want \"LIGAR\" (len 5)", gotPayload, len(gotPayload))
	}
}

func TestRegister_InvalidPattern(t *testing.T) {
	table := NewTable(0)

	if err := table.Register("", 0, func(string, []byte) {}); !errors.Is(err, ErrEmptyPattern) {
		t.Errorf("Register(\"\") error = %v, want ErrEmptyPattern", err)
	}
	if err := table.Register("a/#/b", 0, func(string, []byte) {}); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("Register(\"a/#/b\") error = %v, want ErrInvalidPattern", err)
	}
	if table.Len() != 0 {
		t.Errorf("Len() = %d after rejected registrations, want 0", table.Len())
	}
}

func TestRegister_ReplacePreservesOrder(t *testing.T) {
	table := NewTable(0)

	must := func(pattern string, qos byte) {
		t.Helper()
		if err := table.Register(pattern, qos, func(string, []byte) {}); err != nil {
			t.Fatalf("Register(%q) error = %v", pattern, err)
		}
	}

	must("a/b", 0)
	must("c/d", 1)
	must("a/b", 2) // replace

	subs := table.Subscriptions()
	if len(subs) != 2 {
		t.Fatalf("Subscriptions() len = %d, want 2", len(subs))
	}
	if subs[0].Pattern != "a/b" || subs[0].QoS != 2 {
		t.Errorf("subs[0] = %+v, want {a/b 2}", subs[0])
	}
	if subs[1].Pattern != "c/d" || subs[1].QoS != 1 {
		t.Errorf("subs[1] = %+v, want {c/d 1}", subs[1])
	}
}

func TestSubscriptions_InsertionOrder(t *testing.T) {
	table := NewTable(0)

	patterns := []string{"z/1", "a/2", "m/3", "b/4"}
	for _, p := range patterns {
		if err := table.Register(p, 0, func(string, []byte) {}); err != nil {
			t.Fatalf("Register(%q) error = %v", p, err)
		}
	}

	subs := table.Subscriptions()
	for i, p := range patterns {
		if subs[i].Pattern != p {
			t.Errorf("subs[%d].Pattern = %q, want %q", i, subs[i].Pattern, p)
		}
	}
}

func TestRemove(t *testing.T) {
	table := NewTable(0)

	if err := table.Register("a/b", 0, func(string, []byte) {}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if !table.Remove("a/b") {
		t.Error("Remove(\"a/b\") = false, want true")
	}
	if table.Remove("a/b") {
		t.Error("Remove(\"a/b\") second call = true, want false")
	}
	if n := table.Dispatch("a/b", []byte("x")); n != 0 {
		t.Errorf("Dispatch() after Remove invoked %d handlers, want 0", n)
	}
}

func TestDispatch_Unmatched(t *testing.T) {
	table := NewTable(0)

	if err := table.Register("a/+/c", 0, func(string, []byte) {
		t.Error("handler invoked for non-matching topic")
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if n := table.Dispatch("a/b/x/c", []byte("x")); n != 0 {
		t.Errorf("Dispatch() invoked %d handlers, want 0", n)
	}
}

func TestDispatch_MultipleMatches(t *testing.T) {
	table := NewTable(0)

	var mu sync.Mutex
	hits := make(map[string]int)
	record := func(name string) Handler {
		return func(string, []byte) {
			mu.Lock()
			hits[name]++
			mu.Unlock()
		}
	}

	for pattern, h := range map[string]Handler{
		"a/#":   record("hash"),
		"a/+":   record("plus"),
		"a/b":   record("exact"),
		"x/y/z": record("other"),
	} {
		if err := table.Register(pattern, 0, h); err != nil {
			t.Fatalf("Register(%q) error = %v", pattern, err)
		}
	}

	if n := table.Dispatch("a/b", []byte("x")); n != 3 {
		t.Errorf("Dispatch() invoked %d handlers, want 3", n)
	}
	if hits["other"] != 0 {
		t.Error("non-matching handler invoked")
	}
}

func TestDispatch_TruncatesPayload(t *testing.T) {
	table := NewTable(8)

	var got []byte
	if err := table.Register("t", 0, func(_ string, payload []byte) {
		got = append([]byte(nil), payload...)
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	table.Dispatch("t", []byte("0123456789abcdef"))
	if string(got) != "01234567" {
		t.Errorf("handler payload = %q, want %q", got, "01234567")
	}

	// Payloads at or under the bound pass through untouched.
	table.Dispatch("t", []byte("12345678"))
	if string(got) != "12345678" {
		t.Errorf("handler payload = %q, want %q", got, "12345678")
	}
}

func TestDispatch_HandlerPanicRecovered(t *testing.T) {
	table := NewTable(0)

	if err := table.Register("boom", 0, func(string, []byte) {
		panic("handler bug")
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	var after bool
	if err := table.Register("#", 0, func(string, []byte) {
		after = true
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if n := table.Dispatch("boom", []byte("x")); n != 2 {
		t.Errorf("Dispatch() invoked %d handlers, want 2", n)
	}
	if !after {
		t.Error("handler after panicking handler did not run")
	}
}

func TestTable_ConcurrentUse(t *testing.T) {
	table := NewTable(0)

	if err := table.Register("c/+", 0, func(string, []byte) {}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	var wg sync.WaitGroup
	for n := 0; n < 8; n++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for n := 0; n < 100; n++ {
				table.Dispatch("c/x", []byte("p"))
			}
		}()
		go func() {
			defer wg.Done()
			for n := 0; n < 100; n++ {
				_ = table.Subscriptions()
			}
		}()
	}
	wg.Wait()
}
