package schema

import (
	"errors"
	"time"
)

// DateLayout is the canonical wire form for date-only fields.
const DateLayout = "2006-01-02"

var errBadDate = errors.New("expected YYYY-MM-DD or RFC3339 timestamp")

// NormalizeDate accepts the canonical YYYY-MM-DD form, or a full RFC3339
// timestamp which is truncated to its date component. The empty string passes
// through (optional field).
func NormalizeDate(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	if _, err := time.Parse(DateLayout, s); err == nil {
		return s, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(DateLayout), nil
	}
	return "", errBadDate
}

// CheckDate normalizes a date field, recording a failure on ve instead of
// returning an error.
func CheckDate(ve *ValidationError, field, value string) string {
	norm, err := NormalizeDate(value)
	if err != nil {
		ve.Add(field, err.Error())
		return value
	}
	return norm
}

// CheckDatePtr is CheckDate for optional fields.
func CheckDatePtr(ve *ValidationError, field string, value *string) *string {
	if value == nil {
		return nil
	}
	norm := CheckDate(ve, field, *value)
	return &norm
}
