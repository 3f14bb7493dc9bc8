package executor

import "strings"

// CheckPrivileges returns an error if privileges cannot be elevated when needed.
func CheckPrivileges(needsSudo bool) error {
	if !needsSudo {
		return nil
	}
	return CheckPrivilegesFor(isRoot(), hasSudo())
}

// CheckPrivilegesFor is CheckPrivileges for explicit facts.
func CheckPrivilegesFor(root, sudo bool) error {
	if root || sudo {
		return nil
	}
	return ErrNoPrivileges
}

// NeedsElevation reports whether an install command asks for sudo.
func NeedsElevation(command string) bool {
	fields := strings.Fields(command)
	return len(fields) > 0 && fields[0] == "sudo"
}

type errNoPrivileges struct{}

func (e errNoPrivileges) Error() string {
	return "this operation requires root privileges, but neither running as root nor sudo is available"
}

// ErrNoPrivileges is the error returned when privileges cannot be elevated.
var ErrNoPrivileges = errNoPrivileges{}
