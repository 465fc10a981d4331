package core

import (
	"fmt"
	"math"
	"strings"
)

// =============================================================================
// Severity
// =============================================================================

// Severity is the enforcement level of a rule.
type Severity int

// Severity levels, numbered the way ESLint numbers them.
const (
	// SeverityOff disables the rule.
	SeverityOff Severity = iota
	// SeverityWarn reports violations without failing the run.
	SeverityWarn
	// SeverityError reports violations and fails the run.
	SeverityError
)

// String returns the ESLint tag of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityOff:
		return "off"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// IsValid reports whether s is one of the three levels.
func (s Severity) IsValid() bool {
	return s >= SeverityOff && s <= SeverityError
}

// ParseSeverity converts a tag to a Severity value.
// Returns the severity and true if valid, or SeverityOff and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "0":
		return SeverityOff, true
	case "warn", "1":
		return SeverityWarn, true
	case "error", "2":
		return SeverityError, true
	default:
		return SeverityOff, false
	}
}

// SeverityFromValue converts a decoded severity to a Severity.
// ESLint accepts both the string tags and the numbers 0, 1 and 2.
func SeverityFromValue(v any) (Severity, error) {
	switch val := v.(type) {
	case Severity:
		if val.IsValid() {
			return val, nil
		}
	case string:
		if sev, ok := ParseSeverity(val); ok {
			return sev, nil
		}
	case int:
		return severityFromInt(int64(val), v)
	case int64:
		return severityFromInt(val, v)
	case uint64:
		if val <= math.MaxInt64 {
			return severityFromInt(int64(val), v)
		}
	case float64:
		if val == math.Trunc(val) && val >= math.MinInt64 && val < math.MaxInt64 {
			return severityFromInt(int64(val), v)
		}
	}
	return SeverityOff, fmt.Errorf("invalid severity %v: expected \"off\", \"warn\", \"error\" or 0-2", v)
}

func severityFromInt(n int64, raw any) (Severity, error) {
	sev := Severity(n)
	if !sev.IsValid() {
		return SeverityOff, fmt.Errorf("invalid severity %v: expected \"off\", \"warn\", \"error\" or 0-2", raw)
	}
	return sev, nil
}
