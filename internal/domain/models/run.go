package models

import "time"

// RunEntryStatus is the outcome of one entity within a payout run.
type RunEntryStatus string

const (
	RunEntryConfirmed RunEntryStatus = "confirmed"
	RunEntryFailed    RunEntryStatus = "failed"
	RunEntrySkipped   RunEntryStatus = "skipped"
)

// PayoutRun is the journal record of one confirm attempt. Amounts are stored
// as strings to keep exact decimals in BSON.
type PayoutRun struct {
	RunID      string     `bson:"run_id" json:"run_id"`
	Tenant     string     `bson:"tenant" json:"tenant"`
	Month      string     `bson:"month" json:"month"`
	Scope      string     `bson:"scope" json:"scope"`
	Entries    []RunEntry `bson:"entries" json:"entries"`
	Confirmed  int        `bson:"confirmed" json:"confirmed"`
	Failed     int        `bson:"failed" json:"failed"`
	Remaining  int        `bson:"remaining" json:"remaining"`
	StartedAt  time.Time  `bson:"started_at" json:"started_at"`
	FinishedAt time.Time  `bson:"finished_at" json:"finished_at"`
}

// RunEntry records what happened to one selected preview row.
type RunEntry struct {
	EntityType string         `bson:"entity_type" json:"entity_type"`
	EntityID   string         `bson:"entity_id" json:"entity_id"`
	EntityName string         `bson:"entity_name" json:"entity_name"`
	FinalValue string         `bson:"final_value" json:"final_value"`
	PayoutID   string         `bson:"payout_id,omitempty" json:"payout_id,omitempty"`
	Status     RunEntryStatus `bson:"status" json:"status"`
	Error      string         `bson:"error,omitempty" json:"error,omitempty"`
}
