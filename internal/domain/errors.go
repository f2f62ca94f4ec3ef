package domain

import "errors"

// Sentinel errors shared across service and repository layers.
// Handlers map these to HTTP status codes with errors.Is.
var (
	// ErrInvalidPayload marks a device payload that failed validation.
	// Nothing is persisted when this is returned.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrInvalidInput marks an ECG sequence the analyzer cannot accept at all
	// (empty waveform).
	ErrInvalidInput = errors.New("invalid ecg input")

	// ErrInsufficientSignal means the analyzer found fewer than two R-peaks.
	// Callers treat this as "heart rate unknown", never as zero.
	ErrInsufficientSignal = errors.New("insufficient ecg signal")

	// ErrNotFound marks a query for a subject with no stored data.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable marks a persistence failure on the primary write path.
	ErrStoreUnavailable = errors.New("store unavailable")
)
