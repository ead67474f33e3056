// Package errors provides the structured error-report type shared by
// every phase of the core (lexer, parser, resolver, lowerer, format
// expander, MIR-text parser), plus the stable error-code taxonomy spec.md
// §7 enumerates.
package errors

// Error codes are grouped by phase prefix, mirroring spec.md §7's two
// populations: user errors (below, surfaced with a span and one of these
// codes) and internal invariant failures (never assigned a code — they
// panic with a Report instead of being returned as one).
const (
	// Lexer (LEX###)
	LEX001 = "LEX001" // unterminated string or char literal
	LEX002 = "LEX002" // invalid escape sequence

	// Parser (PAR###)
	PAR001 = "PAR001" // unexpected token
	PAR002 = "PAR002" // unmatched delimiter
	PAR003 = "PAR003" // malformed attribute payload
	PAR004 = "PAR004" // restricted visibility syntax in tuple-struct field position
	PAR005 = "PAR005" // malformed generic parameter list
	PAR006 = "PAR006" // malformed where clause
	PAR007 = "PAR007" // malformed self parameter
	PAR008 = "PAR008" // malformed use tree
	PAR009 = "PAR009" // impl "for" clause missing a plain-path trait
	PAR010 = "PAR010" // negative impl with a non-empty body

	// Module resolution (RES###)
	RES001 = "RES001" // mod NAME; resolves to zero candidate files
	RES002 = "RES002" // mod NAME; resolves to two candidate files
	RES003 = "RES003" // #[path] target not found
	RES004 = "RES004" // out-of-line module load attempted while reading stdin

	// Lowering (LOW###)
	LOW001 = "LOW001" // tuple/struct pattern field-count mismatch
	LOW002 = "LOW002" // MaybeTrait bound on a trait other than the Sized marker
	LOW003 = "LOW003" // NotTrait (negative bound) on a non-Sized marker
	LOW004 = "LOW004" // enum mixes value-only and data-bearing variants
	LOW005 = "LOW005" // conflicting repr attribute combination
	LOW006 = "LOW006" // unrecognized repr token
	LOW007 = "LOW007" // malformed method receiver type
	LOW008 = "LOW008" // conflicting linkage attribute combination
	LOW009 = "LOW009" // conflicting lang item definitions across crates
	LOW010 = "LOW010" // #[repr(align(N))] missing its argument

	// Format macro (FMT###)
	FMT001 = "FMT001" // unmatched '{' or '}' in format string
	FMT002 = "FMT002" // duplicate named format argument
	FMT003 = "FMT003" // named argument not found in format string
	FMT004 = "FMT004" // too few positional arguments for the format string
	FMT005 = "FMT005" // invalid format spec syntax

	// MIR-text harness (MIR###)
	MIR001 = "MIR001" // unknown terminator keyword
	MIR002 = "MIR002" // reference to an undefined basic block label
	MIR003 = "MIR003" // malformed rvalue

	// Config (CFG###)
	CFG001 = "CFG001" // malformed crate manifest
)
