// Package posixsubprocess exposes a process.Spawner to Starlark scripts as
// the _posixsubprocess module.
//
//	predeclared := starlark.StringDict{
//	    "_posixsubprocess": posixsubprocess.Module(sp),
//	}
//
// fork_exec takes the seventeen positional arguments of the classic
// interpreter primitive and returns the child pid, or -1 when the program
// could not be started. Malformed arguments fail with a "ValueError:"
// message and unsupported argument shapes with "NotImplementedError:".
package posixsubprocess
