//go:build unix

package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/subprocess/logger"
)

const helperEnv = "GO_WANT_HELPER_PROCESS"

// TestHelperProcess is the child side of the launcher tests. It is a no-op
// unless started by helperRequest.
func TestHelperProcess(t *testing.T) {
	if os.Getenv(helperEnv) != "1" {
		return
	}
	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) < 2 {
		os.Exit(2)
	}

	switch cmd, rest := args[1], args[2:]; cmd {
	case "write-fd":
		fd, _ := strconv.Atoi(rest[0])
		f := os.NewFile(uintptr(fd), "fd")
		if _, err := f.Write([]byte(rest[1])); err != nil {
			os.Exit(3)
		}
	case "echo":
		fmt.Print(strings.Join(rest, " "))
	case "getenv":
		fmt.Print(os.Getenv(rest[0]))
	case "has-env":
		if _, ok := os.LookupEnv(rest[0]); !ok {
			os.Exit(4)
		}
	case "pwd":
		wd, _ := os.Getwd()
		fmt.Print(wd)
	case "exit":
		code, _ := strconv.Atoi(rest[0])
		os.Exit(code)
	default:
		os.Exit(2)
	}
	os.Exit(0)
}

func testExecutable(t *testing.T) string {
	t.Helper()
	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("os.Executable: %v", err)
	}
	return exe
}

// helperRequest returns a request that runs TestHelperProcess with args.
func helperRequest(t *testing.T, args ...string) *Request {
	t.Helper()
	argv := append([]string{testExecutable(t), "-test.run=^TestHelperProcess$", "--"}, args...)
	req := NewRequest(argv...)
	req.Env = map[string]string{helperEnv: "1"}
	return req
}

func newTestSpawner(t *testing.T, mutate func(*Config), opts ...Option) *Spawner {
	t.Helper()
	cfg := DefaultConfig()
	cfg.GracePeriod = 2 * time.Second
	if mutate != nil {
		mutate(&cfg)
	}
	opts = append([]Option{WithRegistry(NewRegistry()), WithLogger(logger.Nop())}, opts...)
	return NewSpawner(cfg, opts...)
}

func newPipe(t *testing.T) (*os.File, *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})
	return r, w
}

// waitCode waits for pid and fails the test unless it exits with want.
func waitCode(t *testing.T, sp *Spawner, pid int64, want int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	status, err := sp.Wait(ctx, pid)
	if err != nil {
		t.Fatalf("Wait(%d): %v", pid, err)
	}
	if status.Code != want {
		t.Fatalf("pid %d exited with %d, want %d", pid, status.Code, want)
	}
}

// readAll closes w and returns everything written to r.
func readAll(t *testing.T, r, w *os.File) string {
	t.Helper()
	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read pipe: %v", err)
	}
	return string(out)
}
