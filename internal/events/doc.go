// Package events carries trade lifecycle notifications from the trade service
// to in-process subscribers. Events are emitted after the state change has been
// committed, so a handler never observes a change that was rolled back.
package events
