package ipmi

import (
	"errors"
	"testing"
)

func TestParseControlAction(t *testing.T) {
	valid := map[string]Action{
		"on":    ActionOn,
		"off":   ActionOff,
		"reset": ActionReset,
		"cycle": ActionCycle,
	}

	for input, want := range valid {
		got, err := ParseControlAction(input)
		if err != nil {
			t.Errorf("ParseControlAction(%q): unexpected error: %v", input, err)
		}
		if got != want {
			t.Errorf("ParseControlAction(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseControlActionRejections(t *testing.T) {
	invalid := []string{
		"",
		"status", // query, not a control action
		"ON",     // matching is case-sensitive
		"Off",
		"restart",
		"poweron",
		"on ",
		" on",
		"on\n",
	}

	for _, input := range invalid {
		if _, err := ParseControlAction(input); !errors.Is(err, ErrInvalidAction) {
			t.Errorf("ParseControlAction(%q): got %v, want ErrInvalidAction", input, err)
		}
	}
}
