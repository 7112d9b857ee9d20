package process

import (
	stderrors "errors"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/kbukum/subprocess/errors"
)

// defaultPath is searched when the child environment carries no PATH.
const defaultPath = "/bin:/usr/bin"

// launch starts the child described by req. It returns the OS process and
// the executable path that was used or last tried.
func launch(req *Request, envMode string) (*os.Process, string, error) {
	env := childEnv(req.Env, envMode)
	plan := Plan(req)

	if err := checkCwd(req.Cwd); err != nil {
		return nil, req.Args[0], classifyLaunchError(req.Args[0], err)
	}

	candidates := executableCandidates(req, lookupEnv(env, "PATH"))
	var firstErr, lastErr error
	tried, failed := req.Args[0], ""
	for _, path := range candidates {
		tried = path
		if err := probeExecutable(resolveAgainst(req.Cwd, path)); err != nil {
			err = &os.PathError{Op: "exec", Path: path, Err: err}
			if skippable(err) {
				lastErr = err
			} else if firstErr == nil {
				firstErr, failed = err, path
			}
			continue
		}

		proc, err := startProcess(req, plan, path, env)
		if err == nil {
			return proc, path, nil
		}
		if skippable(err) {
			lastErr = err
		} else if firstErr == nil {
			firstErr, failed = err, path
		}
	}

	err := firstErr
	if err != nil {
		tried = failed
	} else {
		err = lastErr
	}
	if err == nil {
		err = &os.PathError{Op: "exec", Path: req.Args[0], Err: syscall.ENOENT}
	}
	return nil, tried, classifyLaunchError(tried, err)
}

// classifyLaunchError maps an OS failure to a launch failure. Transient
// shortages are retryable.
func classifyLaunchError(executable string, err error) *errors.AppError {
	var errno syscall.Errno
	if stderrors.As(err, &errno) {
		switch errno {
		case syscall.EAGAIN, syscall.ENOMEM, syscall.ETXTBSY:
			return errors.ResourceExhausted(executable, err)
		}
	}
	return errors.LaunchFailed(executable, err)
}

func skippable(err error) bool {
	return stderrors.Is(err, syscall.ENOENT) || stderrors.Is(err, syscall.ENOTDIR)
}

// checkCwd verifies the working directory before any child exists.
func checkCwd(cwd string) error {
	if cwd == "" {
		return nil
	}
	info, err := os.Stat(cwd)
	if err != nil {
		return &preflightError{err: err}
	}
	if !info.IsDir() {
		return &preflightError{err: &os.PathError{Op: "chdir", Path: cwd, Err: syscall.ENOTDIR}}
	}
	return nil
}

// executableCandidates lists the paths to try in order.
func executableCandidates(req *Request, path string) []string {
	if len(req.ExecutableList) > 0 {
		return req.ExecutableList
	}
	argv0 := req.Args[0]
	if strings.ContainsRune(argv0, '/') {
		return []string{argv0}
	}
	if path == "" {
		path = defaultPath
	}
	dirs := filepath.SplitList(path)
	out := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		out = append(out, filepath.Join(dir, argv0))
	}
	return out
}

func resolveAgainst(cwd, path string) string {
	if cwd == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cwd, path)
}

// childEnv builds the child environment. A nil override inherits the parent
// environment as is.
func childEnv(override map[string]string, mode string) []string {
	if override == nil {
		return os.Environ()
	}

	merged := override
	if mode != EnvReplace {
		merged = make(map[string]string)
		for _, kv := range os.Environ() {
			if k, v, ok := strings.Cut(kv, "="); ok {
				merged[k] = v
			}
		}
		maps.Copy(merged, override)
	}

	keys := slices.Sorted(maps.Keys(merged))
	env := make([]string, len(keys))
	for i, k := range keys {
		env[i] = k + "=" + merged[k]
	}
	return env
}

func lookupEnv(env []string, key string) string {
	prefix := key + "="
	for i := len(env) - 1; i >= 0; i-- {
		if v, ok := strings.CutPrefix(env[i], prefix); ok {
			return v
		}
	}
	return ""
}
