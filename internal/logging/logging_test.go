package logging

import "testing"

func TestNew(t *testing.T) {
	for _, cfg := range []Config{
		DefaultConfig(),
		{Level: "debug", Format: "json"},
		{Level: "nonsense", Format: "console"}, // falls back to info
	} {
		log := New(cfg)
		if log == nil {
			t.Fatalf("New(%+v) = nil", cfg)
		}
		log.Sync()
	}
}

func TestNop(t *testing.T) {
	Nop().Info("discarded")
}
