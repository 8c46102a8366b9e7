// Package engine runs multi-day simulations.
//
// Input series are cut at calendar-day boundaries, every day is dispatched
// independently from the configured initial state of charge and the outcome
// is fanned out to the report store, metrics sinks, the event bus and an
// optional publisher.
package engine
