// Package emitter provides the synchronous, prioritized event emitter
// the command lifecycle is built on.
//
// An Emitter dispatches one event to its listeners in three tiers,
// Early, Normal and Late, preserving subscription order within each
// tier. Any listener can stop the propagation of the event, preventing
// the remaining ones from observing it, or fail the dispatch by
// returning an error.
package emitter
