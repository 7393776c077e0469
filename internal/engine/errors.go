package engine

import (
	"fmt"
	"strings"
)

// FieldError describes one invalid input field, e.g. "parts[3].width".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// ValidationError lists every problem found in the input. No packing is
// attempted when it is returned.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.String()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// OversizedPart is a part that cannot be placed in its given orientation.
type OversizedPart struct {
	PartID string  `json:"part_id"`
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PartTooLargeError names every part that exceeds the usable area of the
// stock sheet (stock size minus the margin on both sides).
type PartTooLargeError struct {
	Parts        []OversizedPart `json:"parts"`
	UsableWidth  float64         `json:"usable_width"`
	UsableHeight float64         `json:"usable_height"`
}

func (e *PartTooLargeError) Error() string {
	names := make([]string, len(e.Parts))
	for i, p := range e.Parts {
		label := p.Name
		if label == "" {
			label = p.PartID
		}
		names[i] = fmt.Sprintf("%s (%gx%g)", label, p.Width, p.Height)
	}
	return fmt.Sprintf("parts exceed usable sheet area %gx%g: %s",
		e.UsableWidth, e.UsableHeight, strings.Join(names, ", "))
}
