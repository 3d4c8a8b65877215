// Package scheduler runs the periodic jobs of the rental service (the overdue scan and the
// expired session tracker) on cron schedules.
//
// Specs use the six field format with seconds ("0 0 9 * * *") or descriptors ("@daily", "@every 10m").
// A job never overlaps with itself: a tick that arrives while the previous run is still busy is skipped.
package scheduler
