package core

import "fmt"

// ValidationError represents an error found during sample validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// MalformedReferenceError reports a reference table that cannot be used for
// classification. It is raised at load time and aborts the run.
type MalformedReferenceError struct {
	Type   string // Polymer type at fault, empty when the table as a whole is bad
	Reason string
}

func (e *MalformedReferenceError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("malformed reference table: %s", e.Reason)
	}
	return fmt.Sprintf("malformed reference table: type %q: %s", e.Type, e.Reason)
}

// NoSamplesFoundError reports a batch listing without any sample boundary marker.
type NoSamplesFoundError struct {
	Batch  string
	Marker string
}

func (e *NoSamplesFoundError) Error() string {
	return fmt.Sprintf("batch %q: no samples found (no %q marker rows)", e.Batch, e.Marker)
}

// EmptySampleWarning flags a sample without detected peaks. It is not fatal:
// the sample scores 0% against every type.
type EmptySampleWarning struct {
	Batch  string
	Sample string
}

func (e *EmptySampleWarning) Error() string {
	return fmt.Sprintf("batch %q: sample %q has no detected peaks", e.Batch, e.Sample)
}
