package model

import "time"

// Draft is the persisted snapshot of an in-progress wizard: the step
// ordinal, the working document, and when it was last written. Dates inside
// State serialize as ISO-8601 strings and are rehydrated on load.
type Draft struct {
	Step      int           `json:"step"`
	State     Configuration `json:"state"`
	LastSaved time.Time     `json:"lastSaved"`
}
