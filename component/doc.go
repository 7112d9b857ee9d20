// Package component defines the lifecycle contract for long-lived services
// such as the process spawner.
//
// A Component is started once, reports health while running and is stopped
// on shutdown. Components that implement Describable also report a one-line
// summary of how they are configured.
package component
