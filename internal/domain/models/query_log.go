package models

import "time"

// Query operations recorded in the audit log.
const (
	OperationLookup = "lookup"
	OperationMin    = "min"
	OperationMax    = "max"
)

// QueryLogEntry is one answered (or failed) query.
//
// Fields:
//   - ID: random identifier of the entry.
//   - Symbol: normalized symbol.
//   - Operation: lookup, min or max.
//   - Argument: requested date (lookup) or window size (min/max) as given.
//   - Outcome: "ok" or the error kind (e.g. "date not found").
//   - Price: close (lookup) or extreme price; nil on failure.
//   - ResultDate: date of the returned record; nil on failure.
//   - Elapsed: time spent answering.
type QueryLogEntry struct {
	ID         string
	Symbol     string
	Operation  string
	Argument   string
	Outcome    string
	Price      *float64
	ResultDate *time.Time
	Elapsed    time.Duration
}
