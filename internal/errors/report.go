package errors

import (
	"encoding/json"
	goerrors "errors"

	"github.com/corvid-lang/corvidc/internal/token"
)

// Report is the canonical structured error type for the core. Every
// phase's error builders return *Report; WrapReport turns one into an
// error that survives errors.As() unwrapping and can still be rendered
// structurally. cmd/corvidc renders the *Report directly.
type Report struct {
	Schema  string         `json:"schema"`
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Span    *token.Span    `json:"span,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Fix     *Fix           `json:"fix,omitempty"`
}

// Fix is an optional suggested remediation attached to a Report.
type Fix struct {
	Suggestion string  `json:"suggestion"`
	Confidence float64 `json:"confidence"`
}

const schemaV1 = "corvidc.error/v1"

// New creates a Report with no span or data attached; chain WithSpan /
// WithData / WithFix to fill those in.
func New(code, phase, message string) *Report {
	return &Report{Schema: schemaV1, Code: code, Phase: phase, Message: message}
}

func (r *Report) WithSpan(span token.Span) *Report {
	r.Span = &span
	return r
}

func (r *Report) WithData(data map[string]any) *Report {
	r.Data = data
	return r
}

func (r *Report) WithFix(suggestion string, confidence float64) *Report {
	r.Fix = &Fix{Suggestion: suggestion, Confidence: confidence}
	return r
}

// ReportError wraps a Report so it satisfies the error interface while
// remaining recoverable via AsReport.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a Report from an error chain, if present.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if goerrors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// WrapReport wraps r as an error. Returns nil if r is nil, so call sites
// can write `return errors.WrapReport(buildReport(...))` unconditionally.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON renders the Report as JSON. Map keys in Data are sorted
// automatically by encoding/json, giving deterministic output without a
// bespoke marshaler.
func (r *Report) ToJSON(indent bool) (string, error) {
	var data []byte
	var err error
	if indent {
		data, err = json.MarshalIndent(r, "", "  ")
	} else {
		data, err = json.Marshal(r)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Bug panics with a Report describing an internal invariant failure.
// Per spec.md §7, these are never returned as ordinary errors: a violated
// invariant is a compiler bug, not a condition a caller can recover from.
func Bug(phase, message string, span token.Span) {
	panic(New("BUG", phase, message).WithSpan(span))
}
