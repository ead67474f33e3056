package errors

import (
	"encoding/json"
	"io"
)

// JSONEncoder writes line-delimited JSON reports, one per line, to an
// underlying writer. cmd/corvidc selects this over the colored renderer
// when stdout isn't a terminal, so piped output stays machine-readable.
type JSONEncoder struct {
	w   io.Writer
	enc *json.Encoder
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w, enc: json.NewEncoder(w)}
}

// Encode writes one Report as a single JSON line.
func (e *JSONEncoder) Encode(r *Report) error {
	return e.enc.Encode(r)
}
