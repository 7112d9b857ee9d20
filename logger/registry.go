package logger

import "sync"

// named maps a component name to the logger registered for it.
var named sync.Map

// Register makes l the logger Get returns for name. A later call replaces it.
func Register(name string, l *Logger) {
	named.Store(name, l)
}

// Get returns the logger registered for name, or the global logger tagged
// with name as its component.
func Get(name string) *Logger {
	if l, ok := named.Load(name); ok {
		return l.(*Logger)
	}
	return GetGlobalLogger().WithComponent(name)
}
