package posixsubprocess

import (
	"context"
	"fmt"
	"syscall"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/kbukum/subprocess/errors"
	"github.com/kbukum/subprocess/process"
)

// ModuleName is the name the module is registered under.
const ModuleName = "_posixsubprocess"

// contextKey is the thread-local key holding the context for spawner calls.
const contextKey = "posixsubprocess.context"

// SetContext makes ctx the context of spawner calls made from thread.
func SetContext(thread *starlark.Thread, ctx context.Context) {
	thread.SetLocal(contextKey, ctx)
}

func threadContext(thread *starlark.Thread) context.Context {
	if ctx, ok := thread.Local(contextKey).(context.Context); ok {
		return ctx
	}
	return context.Background()
}

// Module returns the _posixsubprocess module bound to sp.
func Module(sp *process.Spawner) *starlarkstruct.Module {
	return &starlarkstruct.Module{
		Name: ModuleName,
		Members: starlark.StringDict{
			"fork_exec": starlark.NewBuiltin(ModuleName+".fork_exec", func(
				thread *starlark.Thread,
				fn *starlark.Builtin,
				args starlark.Tuple,
				kwargs []starlark.Tuple,
			) (starlark.Value, error) {
				fa, err := unpackForkExec(thread, fn, args, kwargs)
				if err != nil {
					return starlark.None, err
				}

				pid, err := sp.ForkExec(threadContext(thread), fa)
				if err != nil {
					if errors.IsLaunchFailure(err) {
						return starlark.MakeInt64(process.InvalidPID), nil
					}
					return starlark.None, toStarlarkError(err)
				}
				return starlark.MakeInt64(pid), nil
			}),
			"waitpid": starlark.NewBuiltin(ModuleName+".waitpid", func(
				thread *starlark.Thread,
				fn *starlark.Builtin,
				args starlark.Tuple,
				kwargs []starlark.Tuple,
			) (starlark.Value, error) {
				var pid int
				if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "pid", &pid); err != nil {
					return starlark.None, err
				}

				status, err := sp.Wait(threadContext(thread), int64(pid))
				if err != nil {
					return starlark.None, toStarlarkError(err)
				}
				return starlark.MakeInt(status.Code), nil
			}),
			"kill": starlark.NewBuiltin(ModuleName+".kill", func(
				thread *starlark.Thread,
				fn *starlark.Builtin,
				args starlark.Tuple,
				kwargs []starlark.Tuple,
			) (starlark.Value, error) {
				var (
					pid int
					sig = int(syscall.SIGTERM)
				)
				if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "pid", &pid, "sig?", &sig); err != nil {
					return starlark.None, err
				}

				if err := sp.Signal(int64(pid), syscall.Signal(sig)); err != nil {
					return starlark.None, toStarlarkError(err)
				}
				return starlark.None, nil
			}),
		},
	}
}

func unpackForkExec(
	thread *starlark.Thread,
	fn *starlark.Builtin,
	args starlark.Tuple,
	kwargs []starlark.Tuple,
) (process.ForkExecArgs, error) {
	var (
		fa                                   process.ForkExecArgs
		argv, executables, fdsToKeep         starlark.Value
		cwd, env, preexec                    starlark.Value
		p2cread, p2cwrite, c2pread, c2pwrite int
		erread, errwrite                     int
		errpipeRead, errpipeWrite            int
	)

	if err := starlark.UnpackArgs(fn.Name(), args, kwargs,
		"args", &argv,
		"executable_list", &executables,
		"close_fds", &fa.CloseFDs,
		"fds_to_keep", &fdsToKeep,
		"cwd", &cwd,
		"env", &env,
		"p2cread", &p2cread,
		"p2cwrite", &p2cwrite,
		"c2pread", &c2pread,
		"c2pwrite", &c2pwrite,
		"erread", &erread,
		"errwrite", &errwrite,
		"errpipe_read", &errpipeRead,
		"errpipe_write", &errpipeWrite,
		"restore_signals", &fa.RestoreSignals,
		"call_setsid", &fa.CallSetsid,
		"preexec", &preexec,
	); err != nil {
		return fa, err
	}

	var err error
	if fa.Args, err = toSequence("args", argv); err != nil {
		return fa, err
	}
	if fa.ExecutableList, err = toSequence("executable_list", executables); err != nil {
		return fa, err
	}
	if fa.FDsToKeep, err = toSequence("fds_to_keep", fdsToKeep); err != nil {
		return fa, err
	}
	fa.Cwd = toGo(cwd)
	if fa.Env, err = toEnv(env); err != nil {
		return fa, toStarlarkError(err)
	}

	fa.P2CRead, fa.P2CWrite = p2cread, p2cwrite
	fa.C2PRead, fa.C2PWrite = c2pread, c2pwrite
	fa.ErrRead, fa.ErrWrite = erread, errwrite
	fa.ErrpipeRead, fa.ErrpipeWrite = errpipeRead, errpipeWrite

	switch hook := preexec.(type) {
	case starlark.NoneType:
	case starlark.Callable:
		fa.PreExec = func() error {
			_, err := starlark.Call(thread, hook, nil, nil)
			return err
		}
	default:
		return fa, fmt.Errorf("ValueError: preexec must be callable or None, not %s", preexec.Type())
	}
	return fa, nil
}

// toSequence converts a list or tuple into loose Go values.
func toSequence(name string, v starlark.Value) ([]any, error) {
	iterable, ok := v.(starlark.Indexable)
	switch v.(type) {
	case starlark.String, starlark.Bytes:
		ok = false
	}
	if !ok {
		return nil, fmt.Errorf("ValueError: %s must be a sequence, not %s", name, v.Type())
	}
	out := make([]any, iterable.Len())
	for i := range out {
		out[i] = toGo(iterable.Index(i))
	}
	return out, nil
}

// toGo converts scalars to their Go form. Values without one are passed
// through unchanged so that marshaling rejects them.
func toGo(v starlark.Value) any {
	switch x := v.(type) {
	case starlark.NoneType:
		return nil
	case starlark.String:
		return string(x)
	case starlark.Bytes:
		return []byte(x)
	case starlark.Int:
		if n, ok := x.Int64(); ok {
			return n
		}
		if n, ok := x.Uint64(); ok {
			return n
		}
		return x
	case starlark.Bool:
		return bool(x)
	default:
		return v
	}
}

// toEnv converts an environment: None, a sequence of str or bytes entries,
// or a dict of str to str. Other shapes pass through so that marshaling
// reports them as unsupported.
func toEnv(v starlark.Value) (any, error) {
	switch x := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case *starlark.List, starlark.Tuple:
		return toSequence("env", x)
	case *starlark.Dict:
		out := make(map[string]string, x.Len())
		for _, item := range x.Items() {
			k, kok := item[0].(starlark.String)
			val, vok := item[1].(starlark.String)
			if !kok || !vok {
				return nil, errors.InvalidInput("env", fmt.Sprintf(
					"env entries must be str to str, got %s to %s", item[0].Type(), item[1].Type()))
			}
			out[string(k)] = string(val)
		}
		return out, nil
	default:
		return v, nil
	}
}

// toStarlarkError renders an error with the exception name a script expects.
func toStarlarkError(err error) error {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return err
	}
	switch {
	case appErr.Code == errors.ErrCodeNotImplemented:
		return fmt.Errorf("NotImplementedError: %s", appErr.Message)
	case errors.IsContractViolation(err):
		return fmt.Errorf("ValueError: %s", appErr.Message)
	case appErr.Code == errors.ErrCodeNotFound:
		return fmt.Errorf("ChildProcessError: %s", appErr.Message)
	default:
		return err
	}
}
