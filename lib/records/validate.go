package records

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError describes a record with a malformed shape, such as a missing slug.
type ValidationError struct {
	Collection string
	Index      int
	Slug       string
	Err        error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s record at index %d (slug %q): %s", e.Collection, e.Index, e.Slug, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateFighters checks the required fields of every fighter.
func ValidateFighters(fighters []Fighter) error {
	var errs []error
	for i, f := range fighters {
		err := validate.Struct(f)
		if err != nil {
			errs = append(errs, &ValidationError{Collection: "fighters", Index: i, Slug: f.Slug, Err: err})
		}
	}
	return errors.Join(errs...)
}

// ValidateEvents checks the required fields and the ISO date of every event.
func ValidateEvents(events []Event) error {
	var errs []error
	for i, e := range events {
		err := validate.Struct(e)
		if err != nil {
			errs = append(errs, &ValidationError{Collection: "events", Index: i, Slug: e.Slug, Err: err})
		}
	}
	return errors.Join(errs...)
}

// Validate checks both collections of the snapshot.
func (s Snapshot) Validate() error {
	return errors.Join(ValidateFighters(s.Fighters), ValidateEvents(s.Events))
}
