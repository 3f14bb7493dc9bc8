package sysinfo

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Distribution describes the host OS release for display purposes. It
// never changes the package defaults chosen by Resolve.
type Distribution struct {
	ID         string   // e.g. "ubuntu", "fedora"
	IDLike     []string // related distributions from ID_LIKE
	VersionID  string
	PrettyName string
}

// osReleasePath is a variable so tests can point it at a fixture.
var osReleasePath = "/etc/os-release"

// DetectDistribution reports the running OS release. On Linux it reads
// /etc/os-release; on macOS it asks sw_vers.
func DetectDistribution() Distribution {
	switch runtime.GOOS {
	case "linux":
		if d, err := readOSRelease(osReleasePath); err == nil && d.ID != "" {
			return d
		}
		return Distribution{ID: "unknown", PrettyName: "Unknown Linux"}
	case "darwin":
		d := Distribution{ID: "macos", PrettyName: "macOS"}
		if out, err := exec.Command("sw_vers", "-productVersion").Output(); err == nil {
			d.VersionID = strings.TrimSpace(string(out))
			d.PrettyName = "macOS " + d.VersionID
		}
		return d
	case "windows":
		return Distribution{ID: "windows", PrettyName: "Windows"}
	}
	return Distribution{ID: runtime.GOOS, PrettyName: runtime.GOOS}
}

func readOSRelease(path string) (Distribution, error) {
	f, err := os.Open(path)
	if err != nil {
		return Distribution{}, err
	}
	defer f.Close()

	return parseOSRelease(f)
}

func parseOSRelease(r io.Reader) (Distribution, error) {
	var d Distribution

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		parts := strings.SplitN(scanner.Text(), "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), "\"")

		switch key {
		case "ID":
			d.ID = value
		case "ID_LIKE":
			d.IDLike = strings.Fields(value)
		case "VERSION_ID":
			d.VersionID = value
		case "PRETTY_NAME":
			d.PrettyName = value
		}
	}

	return d, scanner.Err()
}

// PrefersRPM reports whether the distribution belongs to an RPM family.
// Used only to hint at --package-type rpm; the default stays deb.
func (d Distribution) PrefersRPM() bool {
	for _, id := range append([]string{d.ID}, d.IDLike...) {
		switch id {
		case "fedora", "rhel", "centos", "rocky", "almalinux", "opensuse", "suse", "sles":
			return true
		}
	}
	return false
}
