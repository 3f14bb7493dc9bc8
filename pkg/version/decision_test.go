package version

import "testing"

func TestDecide(t *testing.T) {
	latest, err := Decode("V7.94a")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		installed Code
		found     bool
		pinned    bool
		expected  Decision
	}{
		{"not installed", 0, false, false, DecisionInstall},
		{"older installed", 79400, true, false, DecisionUpdate},
		{"same installed", 79401, true, false, DecisionSkip},
		{"newer installed", 79500, true, false, DecisionSkip},
		{"pinned same", 79401, true, true, DecisionSkip},
		{"pinned newer installed", 79500, true, true, DecisionReplace},
		{"pinned not installed", 0, false, true, DecisionInstall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.installed, tt.found, latest, tt.pinned)
			if got != tt.expected {
				t.Errorf("Decide() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestDecisionDescribe(t *testing.T) {
	if DecisionUpdate.Describe() != "update available" {
		t.Errorf("unexpected description: %s", DecisionUpdate.Describe())
	}
	if DecisionSkip.Describe() != "already on latest" {
		t.Errorf("unexpected description: %s", DecisionSkip.Describe())
	}
	if DecisionSkip.NeedsDownload() {
		t.Error("DecisionSkip should not need a download")
	}
	if !DecisionInstall.NeedsDownload() {
		t.Error("DecisionInstall should need a download")
	}
}
