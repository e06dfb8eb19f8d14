package orchestration

import "testing"

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateIdle:        "idle",
		StateAwaitingAll: "awaiting-all",
		StateFailed:      "failed",
		State(42):        "unknown",
		State(-1):        "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

func TestStateTerminal(t *testing.T) {
	for s := StateIdle; s <= StateFailed; s++ {
		want := s == StateDone || s == StateFailed
		if s.Terminal() != want {
			t.Errorf("%s.Terminal() = %v, want %v", s, s.Terminal(), want)
		}
	}
}
