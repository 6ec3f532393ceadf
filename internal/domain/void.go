package domain

import "time"

// VoidRecord links an original journal entry to its compensating entry.
// The state machine is Posted -> Voided, terminal; a second void of the
// same entry is a conflict, never a silent re-apply.
type VoidRecord struct {
	ID              int64     `json:"id"`
	JournalEntryID  int64     `json:"journal_entry_id"`
	ReversalEntryID int64     `json:"reversal_entry_id"`
	Reason          string    `json:"reason"`
	Actor           string    `json:"actor"`
	CreatedAt       time.Time `json:"created_at"`
}

// VoidFilter represents filter criteria for void record queries
type VoidFilter struct {
	JournalEntryID *int64
	Actor          *string
	FromDate       *time.Time
	ToDate         *time.Time
	Limit          int
	Offset         int
}
