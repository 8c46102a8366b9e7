// Package events defines the simulation events emitted on the event bus.
//
// Available event types:
//   - DayCompleted: a day was simulated and persisted
//   - DayFailed: a day could not be simulated
//   - RunCompleted: every day of a run is done
package events
