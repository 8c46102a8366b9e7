// Package dispatch simulates a battery sitting between on-site production,
// on-site consumption and the grid.
//
// The rule is greedy: surplus charges the battery up to its ceiling and the
// remainder is exported; deficit discharges the battery down to its floor and
// the remainder is imported. Signs follow the grid's point of view:
//
//   - battery power > 0 discharging, < 0 charging
//   - grid power    > 0 exporting,   < 0 importing
//
// so that grid = (production - consumption) + battery for every interval.
//
// Simulate owns its state of charge for the duration of one call. Callers
// simulating several days in parallel call it once per day.
package dispatch
