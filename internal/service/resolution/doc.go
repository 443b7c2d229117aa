// Package resolution tracks which retailers an account manager has marked
// as handled. Resolved retailers drop out of the needs-attention list on the
// next aggregation pass but remain visible in the roster. Snoozes are
// recorded as metadata only; nothing here schedules work.
package resolution
