package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkEntry is a single reported work session.
type WorkEntry struct {
	ID      int64           `json:"id" db:"id"`
	DateISO string          `json:"date" db:"date_iso"`
	Hours   decimal.Decimal `json:"hours" db:"hours"`
	Note    string          `json:"note,omitempty" db:"note"`
	// WindowEndDate is the key of the pay window DateISO fell into when the
	// entry was written. It is not recomputed later.
	WindowEndDate string    `json:"window_end_date" db:"window_end_date"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// NewEntry carries the caller-supplied fields of a WorkEntry.
type NewEntry struct {
	DateISO       string
	Hours         decimal.Decimal
	Note          string
	WindowEndDate string
}

// EntryPatch is a partial update of a WorkEntry. Nil fields are left as they
// are. The window key is derived from the date and cannot be patched.
type EntryPatch struct {
	DateISO *string
	Hours   *decimal.Decimal
	Note    *string
}

// Empty reports whether the patch changes nothing.
func (p EntryPatch) Empty() bool {
	return p.DateISO == nil && p.Hours == nil && p.Note == nil
}

// PaidBlock is the cached aggregate of one pay window.
type PaidBlock struct {
	WindowEndDate string          `json:"window_end_date" db:"window_end_date"`
	IsPaid        bool            `json:"is_paid" db:"is_paid"`
	PaydayDate    string          `json:"payday_date" db:"payday_date"`
	TotalHours    decimal.Decimal `json:"total_hours" db:"total_hours"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}
