package common

import (
	"errors"
	"fmt"
)

// Sentinel errors for the pipeline. None of these abort a batch: documents
// and charges that hit them are skipped or dropped individually.
var (
	// ErrUnknownVendor means classification found neither vendor marker.
	// Callers must not fall back to a default vendor.
	ErrUnknownVendor = errors.New("unknown vendor")

	// ErrMissingField means a mandatory field (house or date) could not be
	// resolved from the extracted text.
	ErrMissingField = errors.New("missing mandatory field")

	// ErrUnknownHouse means an aggregated charge has no tenant profile.
	ErrUnknownHouse = errors.New("no tenant profile for house")

	// ErrNoExtractor means a classified vendor has no extraction strategy.
	// This is a programming invariant violation, not a data error.
	ErrNoExtractor = errors.New("no extractor registered for vendor")
)

// WrapError annotates err with a message, preserving the error chain.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
