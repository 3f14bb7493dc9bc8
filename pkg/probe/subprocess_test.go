package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

const helperEnv = "JLINK_UPDATE_WANT_PROBE_HELPER"

// TestHelperProcess stands in for the probe-helper sub-command. It is not a
// real test; it only does work when launched by helperLoader.
func TestHelperProcess(t *testing.T) {
	if os.Getenv(helperEnv) != "1" {
		return
	}

	path := os.Args[len(os.Args)-1]
	switch filepath.Base(path) {
	case "ok.so":
		fmt.Fprintf(os.Stdout, `{"path":%q,"ok":true,"version":79400}`, path)
		os.Exit(0)
	case "nosym.so":
		fmt.Fprintf(os.Stdout, `{"path":%q,"ok":false,"reason":"symbol","error":"missing"}`, path)
		os.Exit(1)
	case "notlib.so":
		fmt.Fprintf(os.Stdout, `{"path":%q,"ok":false,"reason":"load","error":"invalid ELF header"}`, path)
		os.Exit(1)
	case "crash.so":
		fmt.Fprintln(os.Stderr, "SIGSEGV: segmentation violation")
		fmt.Fprintln(os.Stderr, "PC=0x7f3a2c1e4a10 m=0 sigcode=1 addr=0x0")
		for i := 1; i <= 18; i++ {
			fmt.Fprintf(os.Stderr, "\ngoroutine %d [running]:\nmain.main()\n\t/src/main.go:%d +0x1d\n", i, i)
		}
		os.Exit(139)
	case "garbage.so":
		fmt.Fprint(os.Stdout, "this is not json")
		os.Exit(0)
	case "hang.so":
		time.Sleep(30 * time.Second)
		os.Exit(0)
	}
	os.Exit(2)
}

func helperLoader(timeout time.Duration) *SubprocessLoader {
	return &SubprocessLoader{
		Command: os.Args[0],
		Args:    []string{"-test.run=TestHelperProcess", "--", HelperCommand},
		Timeout: timeout,
		Env:     []string{helperEnv + "=1"},
	}
}

func TestSubprocessLoaderOK(t *testing.T) {
	code, err := helperLoader(10*time.Second).Load(context.Background(), "/opt/SEGGER/JLink/ok.so")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if code != 79400 {
		t.Errorf("Load() = %d, want 79400", code)
	}
}

func TestSubprocessLoaderMisses(t *testing.T) {
	tests := []struct {
		file     string
		expected error
	}{
		{"nosym.so", ErrSymbolNotFound},
		{"notlib.so", ErrLoadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := helperLoader(10*time.Second).Load(context.Background(), "/tmp/"+tt.file)
			if !errors.Is(err, tt.expected) {
				t.Errorf("Load() error = %v, want %v", err, tt.expected)
			}
			if _, ok := AsFault(err); ok {
				t.Error("an ordinary miss must not be reported as a fault")
			}
		})
	}
}

func TestSubprocessLoaderFaults(t *testing.T) {
	for _, file := range []string{"crash.so", "garbage.so", "unknown.so"} {
		t.Run(file, func(t *testing.T) {
			_, err := helperLoader(10*time.Second).Load(context.Background(), "/tmp/"+file)
			fault, ok := AsFault(err)
			if !ok {
				t.Fatalf("expected a FaultError, got %v", err)
			}
			if fault.Timeout {
				t.Error("fault should not be marked as timeout")
			}
		})
	}
}

func TestSubprocessLoaderCrashDump(t *testing.T) {
	_, err := helperLoader(10*time.Second).Load(context.Background(), "/tmp/crash.so")
	fault, ok := AsFault(err)
	if !ok {
		t.Fatalf("expected a FaultError, got %v", err)
	}

	msg := fault.Error()
	if len(msg) > 300 {
		t.Errorf("fault message should be a single short line, got %d bytes: %q", len(msg), msg)
	}
	if strings.Contains(msg, "goroutine") || strings.Contains(msg, "\n") {
		t.Errorf("crash dump leaked into the fault message: %q", msg)
	}
	if !strings.Contains(msg, "SIGSEGV") {
		t.Errorf("fault message should keep the first line of the dump: %q", msg)
	}
	if !strings.Contains(fault.Stderr, "goroutine 18 [running]") {
		t.Errorf("full error output should be kept for debugging, got %q", fault.Stderr)
	}
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"\n\n  fatal error: unexpected signal\ngoroutine 1", "fatal error: unexpected signal"},
		{"", "no error output"},
		{strings.Repeat("x", 200), strings.Repeat("x", maxCauseLen) + "..."},
	}

	for _, tt := range tests {
		if got := firstLine(tt.input); got != tt.expected {
			t.Errorf("firstLine(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSubprocessLoaderTimeout(t *testing.T) {
	_, err := helperLoader(500*time.Millisecond).Load(context.Background(), "/tmp/hang.so")
	fault, ok := AsFault(err)
	if !ok {
		t.Fatalf("expected a FaultError, got %v", err)
	}
	if !fault.Timeout {
		t.Error("expected timeout fault")
	}
}

func TestSubprocessLoaderMissingHelper(t *testing.T) {
	loader := &SubprocessLoader{Command: filepath.Join(t.TempDir(), "does-not-exist")}
	_, err := loader.Load(context.Background(), "/tmp/ok.so")
	if _, ok := AsFault(err); !ok {
		t.Errorf("expected a FaultError when the helper cannot start, got %v", err)
	}
}

func TestSanitizedEnv(t *testing.T) {
	t.Setenv("LD_PRELOAD", "/tmp/evil.so")
	t.Setenv("JLINK_UPDATE_TEST_KEEP", "1")

	env := sanitizedEnv()
	var keep bool
	for _, e := range env {
		if e == "LD_PRELOAD=/tmp/evil.so" {
			t.Error("LD_PRELOAD should be stripped")
		}
		if e == "JLINK_UPDATE_TEST_KEEP=1" {
			keep = true
		}
	}
	if !keep {
		t.Error("ordinary variables should be kept")
	}
}

func TestHelperMainNotALibrary(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" && runtime.GOOS != "windows" {
		t.Skip("no native loader on this platform")
	}

	path := filepath.Join(t.TempDir(), "libjlinkarm.so")
	if err := os.WriteFile(path, []byte("not a shared object"), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	exit := HelperMain(context.Background(), []string{path}, &out)
	if exit != helperExitNotFound {
		t.Errorf("HelperMain() exit = %d, want %d", exit, helperExitNotFound)
	}

	var report helperReport
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("invalid report %q: %v", out.String(), err)
	}
	if report.OK || report.Reason != reasonLoad || report.Path != path {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestHelperMainUsage(t *testing.T) {
	var out bytes.Buffer
	if exit := HelperMain(context.Background(), nil, &out); exit != helperExitUsage {
		t.Errorf("HelperMain() exit = %d, want %d", exit, helperExitUsage)
	}
}

func TestNativeLoaderMissingFile(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" && runtime.GOOS != "windows" {
		t.Skip("no native loader on this platform")
	}

	_, err := NativeLoader{}.Load(context.Background(), filepath.Join(t.TempDir(), "libjlinkarm.so"))
	if !errors.Is(err, ErrLoadFailed) {
		t.Errorf("expected ErrLoadFailed, got %v", err)
	}
}
