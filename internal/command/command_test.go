package command

import (
	"errors"
	"testing"
)

// =============================================================================
// Fakes
// =============================================================================

// fakeActuator records switch operations.
type fakeActuator struct {
	pumpCalls  []bool
	valveCalls []valveCall
	err        error
}

type valveCall struct {
	index int
	on    bool
}

func (f *fakeActuator) SetPump(on bool) error {
	if f.err != nil {
		return f.err
	}
	f.pumpCalls = append(f.pumpCalls, on)
	return nil
}

func (f *fakeActuator) SetValve(index int, on bool) error {
	if f.err != nil {
		return f.err
	}
	f.valveCalls = append(f.valveCalls, valveCall{index: index, on: on})
	return nil
}

// nopLogger discards all log output.
type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// =============================================================================
// Token Parsing
// =============================================================================

func TestParseToken(t *testing.T) {
	tests := []struct {
		payload string
		want    bool
	}{
		{payload: "ON", want: true},
		{payload: "on", want: true},
		{payload: "LIGAR", want: true},
		{payload: "ligar", want: true},
		{payload: " LIGAR \n", want: true},
		{payload: "OFF", want: false},
		{payload: "DESLIGAR", want: false},
		{payload: "desligar", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			got, err := ParseToken([]byte(tt.payload))
			if err != nil {
				t.Fatalf("ParseToken(%q) error = %v", tt.payload, err)
			}
			if got != tt.want {
				t.Errorf("ParseToken(%q) = %v, want %v", tt.payload, got, tt.want)
			}
		})
	}

	for _, payload := range []string{"", "TOGGLE", "1", "LIGARX"} {
		if _, err := ParseToken([]byte(payload)); !errors.Is(err, ErrUnknownToken) {
			t.Errorf("ParseToken(%q) error = %v, want ErrUnknownToken", payload, err)
		}
	}
}

// =============================================================================
// Handlers
// =============================================================================

func TestPumpHandler(t *testing.T) {
	actuator := &fakeActuator{}
	handlers := NewHandlers(actuator, nopLogger{})

	handlers.Pump("demo/central/comandos/bomba", []byte("LIGAR"))
	handlers.Pump("demo/central/comandos/bomba", []byte("OFF"))

	if len(actuator.pumpCalls) != 2 {
		t.Fatalf("pump calls = %d, want 2", len(actuator.pumpCalls))
	}
	if !actuator.pumpCalls[0] || actuator.pumpCalls[1] {
		t.Errorf("pump calls = %v, want [true false]", actuator.pumpCalls)
	}
}

func TestPumpHandler_UnknownTokenIgnored(t *testing.T) {
	actuator := &fakeActuator{}
	handlers := NewHandlers(actuator, nopLogger{})

	handlers.Pump("demo/central/comandos/bomba", []byte("EXPLODE"))

	if len(actuator.pumpCalls) != 0 {
		t.Errorf("pump calls = %v, want none for unknown token", actuator.pumpCalls)
	}
}

func TestValveHandler(t *testing.T) {
	actuator := &fakeActuator{}
	handlers := NewHandlers(actuator, nopLogger{})

	handlers.Valve("demo/central/comandos/valvula/3", []byte("LIGAR"))
	handlers.Valve("demo/central/comandos/valvula/0", []byte("DESLIGAR"))

	if len(actuator.valveCalls) != 2 {
		t.Fatalf("valve calls = %d, want 2", len(actuator.valveCalls))
	}
	if actuator.valveCalls[0] != (valveCall{index: 3, on: true}) {
		t.Errorf("valve calls[0] = %+v, want index 3 on", actuator.valveCalls[0])
	}
	if actuator.valveCalls[1] != (valveCall{index: 0, on: false}) {
		t.Errorf("valve calls[1] = %+v, want index 0 off", actuator.valveCalls[1])
	}
}

func TestValveHandler_MalformedIgnored(t *testing.T) {
	actuator := &fakeActuator{}
	handlers := NewHandlers(actuator, nopLogger{})

	tests := []struct {
		name    string
		topic   string
		payload string
	}{
		{name: "non-numeric index", topic: "demo/central/comandos/valvula/abc", payload: "LIGAR"},
		{name: "negative index", topic: "demo/central/comandos/valvula/-1", payload: "LIGAR"},
		{name: "missing index", topic: "demo/central/comandos/valvula", payload: "LIGAR"},
		{name: "unknown token", topic: "demo/central/comandos/valvula/2", payload: "MAYBE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlers.Valve(tt.topic, []byte(tt.payload))
		})
	}

	if len(actuator.valveCalls) != 0 {
		t.Errorf("valve calls = %v, want none", actuator.valveCalls)
	}
}

func TestTemperatureHandler(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantPumps []bool
	}{
		{name: "above threshold starts irrigation", payload: "36.5", wantPumps: []bool{true}},
		{name: "at threshold is quiet", payload: "35.0", wantPumps: nil},
		{name: "cool reading is quiet", payload: "21.3", wantPumps: nil},
		{name: "integer reading accepted", payload: "40", wantPumps: []bool{true}},
		{name: "whitespace trimmed", payload: " 38.2\n", wantPumps: []bool{true}},
		{name: "malformed reading ignored", payload: "quente", wantPumps: nil},
		{name: "empty reading ignored", payload: "", wantPumps: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actuator := &fakeActuator{}
			handlers := NewHandlers(actuator, nopLogger{})

			handlers.Temperature("jardim/estufa/temperatura", []byte(tt.payload))

			if len(actuator.pumpCalls) != len(tt.wantPumps) {
				t.Fatalf("pump calls = %v, want %v", actuator.pumpCalls, tt.wantPumps)
			}
			for i, want := range tt.wantPumps {
				if actuator.pumpCalls[i] != want {
					t.Errorf("pump calls[%d] = %v, want %v", i, actuator.pumpCalls[i], want)
				}
			}
		})
	}
}

func TestHandlers_ActuatorFailureLoggedNotFatal(t *testing.T) {
	actuator := &fakeActuator{err: errors.New("gpio busy")}
	handlers := NewHandlers(actuator, nopLogger{})

	// Must not panic or propagate.
	handlers.Pump("demo/central/comandos/bomba", []byte("ON"))
	handlers.Valve("demo/central/comandos/valvula/1", []byte("ON"))
	handlers.Temperature("jardim/estufa/temperatura", []byte("41.0"))
}
