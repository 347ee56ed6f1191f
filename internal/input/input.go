// Package input validates raw user input for work entries before it reaches
// the ledger.
package input

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Tiliavir/paywindow-tracker/internal/ledger"
	"github.com/Tiliavir/paywindow-tracker/internal/model"
	"github.com/Tiliavir/paywindow-tracker/internal/timecalc"
)

const (
	MaxHours      = 24
	MaxNoteLength = 200
)

// Entry is the raw form of a new work entry.
type Entry struct {
	Date  string  `validate:"required,datetime=2006-01-02"`
	Hours float64 `validate:"gt=0,lte=24"`
	Note  string  `validate:"max=200"`
}

// Patch is the raw form of an entry edit. Nil fields are not changed.
type Patch struct {
	Date  *string  `validate:"omitnil,datetime=2006-01-02"`
	Hours *float64 `validate:"omitnil,gt=0,lte=24"`
	Note  *string  `validate:"omitnil,max=200"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewEntry validates e and turns it into a ledger entry with its window
// resolved. The note is trimmed; an all-blank note is dropped.
func NewEntry(e Entry) (model.NewEntry, error) {
	e.Note = strings.TrimSpace(e.Note)
	if err := check(e); err != nil {
		return model.NewEntry{}, err
	}

	w, ok := timecalc.ResolveISO(e.Date)
	if !ok {
		return model.NewEntry{}, &ledger.ValidationError{Field: "Date", Message: "Please select a valid date"}
	}

	return model.NewEntry{
		DateISO:       e.Date,
		Hours:         decimal.NewFromFloat(e.Hours),
		Note:          e.Note,
		WindowEndDate: w.Key,
	}, nil
}

// NewPatch validates p and turns it into a ledger patch.
func NewPatch(p Patch) (model.EntryPatch, error) {
	if p.Note != nil {
		trimmed := strings.TrimSpace(*p.Note)
		p.Note = &trimmed
	}
	if err := check(p); err != nil {
		return model.EntryPatch{}, err
	}

	var out model.EntryPatch
	if p.Date != nil {
		if _, ok := timecalc.ResolveISO(*p.Date); !ok {
			return model.EntryPatch{}, &ledger.ValidationError{Field: "Date", Message: "Please select a valid date"}
		}
		out.DateISO = p.Date
	}
	if p.Hours != nil {
		h := decimal.NewFromFloat(*p.Hours)
		out.Hours = &h
	}
	out.Note = p.Note
	if out.Empty() {
		return model.EntryPatch{}, &ledger.ValidationError{Message: "Nothing to change"}
	}
	return out, nil
}

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validating input: %w", err)
	}
	fe := fieldErrs[0]
	return &ledger.ValidationError{Field: fe.Field(), Message: message(fe)}
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "Hours":
		return fmt.Sprintf("Please enter valid hours between 0 and %d", MaxHours)
	case "Note":
		return fmt.Sprintf("Note must be %d characters or less", MaxNoteLength)
	case "Date":
		return "Please select a valid date"
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
