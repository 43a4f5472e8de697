package stravasync

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DuplicateMarker is matched case-insensitively and without trailing
	// punctuation, so "duplicate of activity 123." is covered too.
	DuplicateMarker = "duplicate of activity"
	EmptyMarker     = "empty"
)

var (
	ErrMissingStartTime    = errors.New("activity has neither UTC nor local start time")
	ErrDuplicateIDNotFound = errors.New("no activity id in duplicate upload message")
)

type uploadErrorKind int

const (
	uploadErrorUnclassified uploadErrorKind = iota
	uploadErrorDuplicate
	uploadErrorEmpty
)

func (k uploadErrorKind) String() string {
	switch k {
	case uploadErrorDuplicate:
		return "duplicate"
	case uploadErrorEmpty:
		return "empty"
	default:
		return "unclassified"
	}
}

// classifyUploadError checks the duplicate marker before the empty marker.
func classifyUploadError(message string) uploadErrorKind {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, DuplicateMarker):
		return uploadErrorDuplicate
	case strings.Contains(lower, EmptyMarker):
		return uploadErrorEmpty
	default:
		return uploadErrorUnclassified
	}
}

var duplicateID = regexp.MustCompile(`(?i)duplicate of activity\D*(\d+)`)

// parseDuplicateID returns the activity id that follows the duplicate marker,
// e.g. "gps_data.tcx duplicate of activity 1234567890." yields 1234567890.
func parseDuplicateID(message string) (int64, error) {
	m := duplicateID.FindStringSubmatch(message)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateIDNotFound, message)
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateIDNotFound, message)
	}
	return id, nil
}
