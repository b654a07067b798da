// Package handler defines the contract every format-conversion handler must
// satisfy (spec §6) and the small value types the conversion protocol passes
// across that boundary.
package handler

import "context"

// FormatDescriptor is an immutable record describing one file format as seen
// by one handler (spec §3).
type FormatDescriptor struct {
	Name      string   // long human-readable description
	Format    string   // short canonical tag, e.g. "png", "mp3"
	Extension string   // filename extension without dot
	MIME      string   // normalized MIME string
	Internal  string   // handler-private discriminator (e.g. png vs apng)
	From      bool     // this handler accepts this format as input
	To        bool     // this handler produces this format as output
	Lossless  bool     // defaults to false
	Category  []string // ordered tags; first is primary
}

// PrimaryCategory returns the descriptor's first category tag, or "" if none
// is declared.
func (f FormatDescriptor) PrimaryCategory() string {
	if len(f.Category) == 0 {
		return ""
	}
	return f.Category[0]
}

// File is an in-flight conversion payload: a named byte blob.
type File struct {
	Name  string
	Bytes []byte
}

// Handler is the opaque actor that performs direct format conversions. A
// single Handler declares a list of formats; any (from, to) pair with
// distinct MIME types it declares becomes a graph edge once the registry
// builds its format list.
type Handler interface {
	// Name is a non-empty string, globally unique across the handler set.
	Name() string

	// SupportedFormats returns the handler's declared format list. It is
	// only meaningful after Init has succeeded; implementations may return
	// nil before that.
	SupportedFormats() []FormatDescriptor

	// SupportAnyInput, when true, marks this handler as willing to attempt
	// inputs beyond its declared formats. Neither the registry nor the graph
	// reads this flag: the handler gets edges only for the formats it
	// declares, and the search treats it like any other handler.
	SupportAnyInput() bool

	// Ready reports whether Init has succeeded at least once.
	Ready() bool

	// Init is idempotent and safe to call multiple times; a failing call
	// may be retried later by the caller.
	Init(ctx context.Context) error

	// DoConvert performs one direct conversion step. inputFormat and
	// outputFormat must be formats this handler previously declared via
	// SupportedFormats. Output files must be non-empty on success.
	DoConvert(ctx context.Context, inputFiles []File, inputFormat, outputFormat FormatDescriptor) ([]File, error)
}
