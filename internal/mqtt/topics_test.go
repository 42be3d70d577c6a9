package mqtt

import "testing"

func TestTopics(t *testing.T) {
	topics := NewTopics("demo/central", "demo/central/comandos")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "status", got: topics.Status(), want: "demo/central/status"},
		{name: "telemetry", got: topics.Telemetry(), want: "demo/central/telemetry"},
		{name: "health", got: topics.Health(), want: "demo/central/health"},
		{name: "boot", got: topics.Boot(), want: "demo/central/boot"},
		{name: "commands root", got: topics.Commands(), want: "demo/central/comandos"},
		{name: "device command", got: topics.Command("bomba"), want: "demo/central/comandos/bomba"},
		{name: "command pattern", got: topics.CommandPattern(), want: "demo/central/comandos/#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
