//go:build unix

package posixsubprocess

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/kbukum/subprocess/logger"
	"github.com/kbukum/subprocess/process"
)

func newSpawner(t *testing.T, policy string) *process.Spawner {
	t.Helper()
	cfg := process.DefaultConfig()
	cfg.PreExecPolicy = policy
	cfg.GracePeriod = time.Second
	sp := process.NewSpawner(cfg,
		process.WithRegistry(process.NewRegistry()),
		process.WithLogger(logger.Nop()),
	)
	t.Cleanup(func() { _ = sp.Stop(context.Background()) })
	return sp
}

func runScript(t *testing.T, sp *process.Spawner, src string) (starlark.StringDict, error) {
	t.Helper()
	thread := &starlark.Thread{Name: t.Name()}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	SetContext(thread, ctx)

	predeclared := starlark.StringDict{ModuleName: Module(sp)}
	return starlark.ExecFileOptions(&syntax.FileOptions{}, thread, "test.star", src, predeclared)
}

const forkExecTail = `False, (), None, None, -1, -1, -1, -1, -1, -1, -1, -1, False, False, None)`

func TestForkExecWaitpid(t *testing.T) {
	sp := newSpawner(t, process.PreExecSkip)
	globals, err := runScript(t, sp, `
pid = _posixsubprocess.fork_exec(["/bin/sh", "-c", "exit 7"], [], `+forkExecTail+`
code = _posixsubprocess.waitpid(pid)
`)
	if err != nil {
		t.Fatalf("script failed: %v", err)
	}
	if pid, _ := starlark.AsInt32(globals["pid"]); pid <= 0 {
		t.Errorf("expected a positive pid, got %v", globals["pid"])
	}
	if code, _ := starlark.AsInt32(globals["code"]); code != 7 {
		t.Errorf("expected exit code 7, got %v", globals["code"])
	}
}

func TestForkExecLaunchFailureReturnsSentinel(t *testing.T) {
	sp := newSpawner(t, process.PreExecSkip)
	globals, err := runScript(t, sp, `
pid = _posixsubprocess.fork_exec(["missing"], ["/nonexistent/missing"], `+forkExecTail+`
`)
	if err != nil {
		t.Fatalf("script failed: %v", err)
	}
	if pid, _ := starlark.AsInt32(globals["pid"]); pid != -1 {
		t.Errorf("expected -1, got %v", globals["pid"])
	}
	if sp.Registry().Len() != 0 {
		t.Errorf("expected nothing registered, got %d", sp.Registry().Len())
	}
}

func TestForkExecContractViolations(t *testing.T) {
	tests := []struct {
		name string
		call string
		want string
	}{
		{
			"non-string argv",
			`_posixsubprocess.fork_exec(["/bin/true", 1], [], ` + forkExecTail,
			"ValueError: value was not of type string",
		},
		{
			"unsorted fds_to_keep",
			`_posixsubprocess.fork_exec(["/bin/true"], [], False, (5, 4), None, None, -1, -1, -1, -1, -1, -1, -1, -1, False, False, None)`,
			"ValueError: bad value(s) in fds_to_keep",
		},
		{
			"unsupported env",
			`_posixsubprocess.fork_exec(["/bin/true"], [], False, (), None, 5, -1, -1, -1, -1, -1, -1, -1, -1, False, False, None)`,
			"NotImplementedError:",
		},
		{
			"non-str env value",
			`_posixsubprocess.fork_exec(["/bin/true"], [], False, (), None, {"A": 1}, -1, -1, -1, -1, -1, -1, -1, -1, False, False, None)`,
			"ValueError: env entries must be str to str",
		},
		{
			"bad preexec",
			`_posixsubprocess.fork_exec(["/bin/true"], [], False, (), None, None, -1, -1, -1, -1, -1, -1, -1, -1, False, False, 3)`,
			"ValueError: preexec must be callable",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sp := newSpawner(t, process.PreExecSkip)
			_, err := runScript(t, sp, tc.call+"\n")
			if err == nil {
				t.Fatal("expected script error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected %q in %q", tc.want, err.Error())
			}
			if sp.Registry().Len() != 0 {
				t.Errorf("expected nothing registered, got %d", sp.Registry().Len())
			}
		})
	}
}

func TestForkExecPreExecCallable(t *testing.T) {
	sp := newSpawner(t, process.PreExecParent)
	globals, err := runScript(t, sp, `
calls = []
def hook():
    calls.append(1)
pid = _posixsubprocess.fork_exec(["/bin/true"], [], False, (), None, None, -1, -1, -1, -1, -1, -1, -1, -1, False, False, hook)
code = _posixsubprocess.waitpid(pid)
`)
	if err != nil {
		t.Fatalf("script failed: %v", err)
	}
	if calls, ok := globals["calls"].(*starlark.List); !ok || calls.Len() != 1 {
		t.Errorf("expected hook to run once, got %v", globals["calls"])
	}
	if code, _ := starlark.AsInt32(globals["code"]); code != 0 {
		t.Errorf("expected exit code 0, got %v", globals["code"])
	}
}

func TestForkExecKeywords(t *testing.T) {
	sp := newSpawner(t, process.PreExecSkip)
	globals, err := runScript(t, sp, `
pid = _posixsubprocess.fork_exec(
    args = ["/bin/sh", "-c", "exit 2"],
    executable_list = [],
    close_fds = False,
    fds_to_keep = (),
    cwd = None,
    env = None,
    p2cread = -1,
    p2cwrite = -1,
    c2pread = -1,
    c2pwrite = -1,
    erread = -1,
    errwrite = -1,
    errpipe_read = -1,
    errpipe_write = -1,
    restore_signals = False,
    call_setsid = False,
    preexec = None,
)
code = _posixsubprocess.waitpid(pid)
`)
	if err != nil {
		t.Fatalf("script failed: %v", err)
	}
	if code, _ := starlark.AsInt32(globals["code"]); code != 2 {
		t.Errorf("expected exit code 2, got %v", globals["code"])
	}
}

func TestKill(t *testing.T) {
	sp := newSpawner(t, process.PreExecSkip)
	globals, err := runScript(t, sp, `
pid = _posixsubprocess.fork_exec(["/bin/sh", "-c", "exec sleep 30"], [], `+forkExecTail+`
_posixsubprocess.kill(pid, 9)
code = _posixsubprocess.waitpid(pid)
`)
	if err != nil {
		t.Fatalf("script failed: %v", err)
	}
	if code, _ := starlark.AsInt32(globals["code"]); code != -9 {
		t.Errorf("expected -9, got %v", globals["code"])
	}
}

func TestWaitpidUnknown(t *testing.T) {
	sp := newSpawner(t, process.PreExecSkip)
	_, err := runScript(t, sp, "_posixsubprocess.waitpid(999999999)\n")
	if err == nil || !strings.Contains(err.Error(), "ChildProcessError") {
		t.Errorf("expected ChildProcessError, got %v", err)
	}
}
