package dto

import "strings"

// Severity is the normalized log severity. Even the named variants
// serialize as bare JSON strings rather than a tagged object, matching the
// wire shape consumers already expect from the original implementation.
type Severity string

const (
	SeverityTrace Severity = "Trace"
	SeverityDebug Severity = "Debug"
	SeverityInfo  Severity = "Info"
	SeverityWarn  Severity = "Warn"
	SeverityError Severity = "Error"
	SeverityFatal Severity = "Fatal"
)

// UnknownSeverity builds the fallback variant carrying the original,
// unrecognized severity text verbatim.
func UnknownSeverity(text string) Severity {
	return Severity(text)
}

// SeverityFromNumber maps an OTLP severity_number (1-24) to its band. A
// number outside every known band returns ("", false); the caller falls
// back to severity_text.
func SeverityFromNumber(n int32) (Severity, bool) {
	switch {
	case n >= 1 && n <= 4:
		return SeverityTrace, true
	case n >= 5 && n <= 8:
		return SeverityDebug, true
	case n >= 9 && n <= 12:
		return SeverityInfo, true
	case n >= 13 && n <= 16:
		return SeverityWarn, true
	case n >= 17 && n <= 20:
		return SeverityError, true
	case n >= 21 && n <= 24:
		return SeverityFatal, true
	default:
		return "", false
	}
}

// SeverityFromText matches severity_text case-insensitively against the
// known band names, returning ("", false) when nothing matches.
func SeverityFromText(text string) (Severity, bool) {
	switch strings.ToLower(text) {
	case "trace":
		return SeverityTrace, true
	case "debug":
		return SeverityDebug, true
	case "info", "information":
		return SeverityInfo, true
	case "warn", "warning":
		return SeverityWarn, true
	case "error":
		return SeverityError, true
	case "fatal", "critical":
		return SeverityFatal, true
	default:
		return "", false
	}
}
