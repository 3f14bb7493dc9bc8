package version

// Decision is the outcome of comparing the installed and target versions.
type Decision string

const (
	DecisionInstall Decision = "install" // Nothing installed
	DecisionUpdate  Decision = "update"  // Installed version is older than latest
	DecisionSkip    Decision = "skip"    // Already at the target version
	DecisionReplace Decision = "replace" // Pinned target differs from installed
)

// Decide chooses what to do given the installed version (if any) and the
// target. When pinned is true the target was requested explicitly and any
// other installed version is replaced, including newer ones.
func Decide(installed Code, found bool, target Code, pinned bool) Decision {
	if !found {
		return DecisionInstall
	}
	if pinned {
		if installed == target {
			return DecisionSkip
		}
		return DecisionReplace
	}
	if installed >= target {
		return DecisionSkip
	}
	return DecisionUpdate
}

// NeedsDownload reports whether the decision requires fetching a package.
func (d Decision) NeedsDownload() bool {
	return d != DecisionSkip
}

// Describe returns the message shown to the user for the decision.
func (d Decision) Describe() string {
	switch d {
	case DecisionInstall:
		return "not installed"
	case DecisionUpdate:
		return "update available"
	case DecisionSkip:
		return "already on latest"
	case DecisionReplace:
		return "replacing installed version"
	}
	return string(d)
}
