package process

import (
	"fmt"
	"maps"
	"strings"

	"github.com/kbukum/subprocess/errors"
)

// MarshalArgs converts argv. Every element must be a string and argv[0] is
// required.
func MarshalArgs(values []any) ([]string, error) {
	if len(values) == 0 {
		return nil, errors.InvalidInput("args", "args must contain at least the program name")
	}
	out := make([]string, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, errors.InvalidInput("args", "value was not of type string").WithDetail("index", i)
		}
		out[i] = s
	}
	return out, nil
}

// MarshalExecutables converts the executable search list. Elements may be
// strings or byte slices.
func MarshalExecutables(values []any) ([]string, error) {
	out := make([]string, 0, len(values))
	for i, v := range values {
		switch p := v.(type) {
		case string:
			out = append(out, p)
		case []byte:
			out = append(out, string(p))
		default:
			return nil, errors.InvalidInput("executable_list", "expected str or bytes, got "+typeName(v)).WithDetail("index", i)
		}
	}
	return out, nil
}

// MarshalEnv converts an environment override to a map in a single pass.
// A nil value means inherit and yields a nil map. Entries are split on the
// first '='; later duplicates win.
func MarshalEnv(value any) (map[string]string, error) {
	switch env := value.(type) {
	case nil:
		return nil, nil
	case map[string]string:
		for k := range env {
			if k == "" || strings.Contains(k, "=") {
				return nil, errors.InvalidInput("env", fmt.Sprintf("illegal environment variable name %q", k))
			}
		}
		return maps.Clone(env), nil
	case []string:
		out := make(map[string]string, len(env))
		for i, entry := range env {
			if err := putEnvEntry(out, entry, i); err != nil {
				return nil, err
			}
		}
		return out, nil
	case [][]byte:
		out := make(map[string]string, len(env))
		for i, entry := range env {
			if err := putEnvEntry(out, stripBytesRepr(string(entry)), i); err != nil {
				return nil, err
			}
		}
		return out, nil
	case []any:
		out := make(map[string]string, len(env))
		for i, item := range env {
			var entry string
			switch e := item.(type) {
			case string:
				entry = e
			case []byte:
				entry = stripBytesRepr(string(e))
			default:
				return nil, errors.InvalidInput("env", "expected str or bytes, got "+typeName(item)).WithDetail("index", i)
			}
			if err := putEnvEntry(out, entry, i); err != nil {
				return nil, err
			}
		}
		return out, nil
	default:
		return nil, errors.NotImplemented("env of type " + typeName(value))
	}
}

func putEnvEntry(out map[string]string, entry string, index int) error {
	key, value, ok := strings.Cut(entry, "=")
	if !ok || key == "" {
		return errors.InvalidInput("env", fmt.Sprintf("illegal environment variable entry %q", entry)).WithDetail("index", index)
	}
	out[key] = value
	return nil
}

// stripBytesRepr removes the b'...' wrapper some interpreters produce when
// a bytes object is converted with str().
func stripBytesRepr(s string) string {
	if len(s) >= 3 && strings.HasPrefix(s, "b'") && strings.HasSuffix(s, "'") {
		return s[2 : len(s)-1]
	}
	return s
}

func marshalCwd(value any) (string, error) {
	switch cwd := value.(type) {
	case nil:
		return "", nil
	case string:
		return cwd, nil
	case []byte:
		return string(cwd), nil
	default:
		return "", errors.NotImplemented("cwd of type " + typeName(value))
	}
}

func marshalFDs(values []any) []int {
	out := make([]int, len(values))
	for i, v := range values {
		fd, _ := toFD(v)
		out[i] = int(fd)
	}
	return out
}

// Marshal validates and converts loose fork_exec arguments into a Request.
// It has no side effects.
func Marshal(args ForkExecArgs, maxFD int64) (*Request, error) {
	if FDSequenceInvalid(args.FDsToKeep, maxFD) {
		return nil, errors.InvalidInput("fds_to_keep", badFDsMessage)
	}

	argv, err := MarshalArgs(args.Args)
	if err != nil {
		return nil, err
	}
	executables, err := MarshalExecutables(args.ExecutableList)
	if err != nil {
		return nil, err
	}
	env, err := MarshalEnv(args.Env)
	if err != nil {
		return nil, err
	}
	cwd, err := marshalCwd(args.Cwd)
	if err != nil {
		return nil, err
	}

	req := &Request{
		Args:           argv,
		ExecutableList: executables,
		CloseFDs:       args.CloseFDs,
		FDsToKeep:      marshalFDs(args.FDsToKeep),
		Cwd:            cwd,
		Env:            env,
		Stdin:          Pair{Read: args.P2CRead, Write: args.P2CWrite},
		Stdout:         Pair{Read: args.C2PRead, Write: args.C2PWrite},
		Stderr:         Pair{Read: args.ErrRead, Write: args.ErrWrite},
		ErrpipeRead:    args.ErrpipeRead,
		ErrpipeWrite:   args.ErrpipeWrite,
		RestoreSignals: args.RestoreSignals,
		CallSetsid:     args.CallSetsid,
		PreExec:        args.PreExec,
	}
	if err := req.Validate(maxFD); err != nil {
		return nil, err
	}
	return req, nil
}

func typeName(v any) string {
	if v == nil {
		return "None"
	}
	return fmt.Sprintf("%T", v)
}
