package executor

import (
	"errors"
	"testing"
)

func TestCheckPrivileges(t *testing.T) {
	// When needsSudo is false, should always return nil
	err := CheckPrivileges(false)
	if err != nil {
		t.Errorf("CheckPrivileges(false) should return nil: %v", err)
	}

	// When needsSudo is true and we can elevate, should return nil
	if isRoot() || hasSudo() {
		err = CheckPrivileges(true)
		if err != nil {
			t.Errorf("CheckPrivileges(true) with elevation available should return nil: %v", err)
		}
	}
}

func TestErrNoPrivileges(t *testing.T) {
	err := ErrNoPrivileges
	msg := err.Error()

	if msg == "" {
		t.Error("ErrNoPrivileges.Error() should return non-empty string")
	}

	if !errors.Is(CheckPrivilegesFor(false, false), ErrNoPrivileges) {
		t.Error("expected ErrNoPrivileges without root or sudo")
	}
	if CheckPrivilegesFor(false, true) != nil || CheckPrivilegesFor(true, false) != nil {
		t.Error("root or sudo should be enough to elevate")
	}
}

func TestNeedsElevation(t *testing.T) {
	tests := []struct {
		command  string
		expected bool
	}{
		{"sudo dpkg -i", true},
		{"  sudo installer -target / -pkg", true},
		{"dpkg -i", false},
		{"", false},
		{"sudoedit", false},
	}

	for _, tt := range tests {
		if got := NeedsElevation(tt.command); got != tt.expected {
			t.Errorf("NeedsElevation(%q) = %v, want %v", tt.command, got, tt.expected)
		}
	}
}
