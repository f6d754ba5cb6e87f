package analysis

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Sink receives analysis results, one per document.
type Sink interface {
	Write(res DocumentResult) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(res DocumentResult) error

// Write calls f.
func (f SinkFunc) Write(res DocumentResult) error { return f(res) }

// Record is the serialised form of a DocumentResult.
type Record struct {
	Path   string  `json:"path" msgpack:"path"`
	Report *Report `json:"report,omitempty" msgpack:"report,omitempty"`
	Error  string  `json:"error,omitempty" msgpack:"error,omitempty"`
}

// NewRecord converts res for encoding.
func NewRecord(res DocumentResult) Record {
	rec := Record{Path: res.Path, Report: res.Report}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	return rec
}

// JSONSink writes one JSON object per line.
type JSONSink struct {
	enc *json.Encoder
}

// NewJSONSink returns a sink writing newline-delimited JSON to w.
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{enc: json.NewEncoder(w)}
}

// Write encodes res.
func (s *JSONSink) Write(res DocumentResult) error {
	return s.enc.Encode(NewRecord(res))
}

// MsgpackSink writes a stream of msgpack-encoded records.
type MsgpackSink struct {
	enc *msgpack.Encoder
}

// NewMsgpackSink returns a sink writing msgpack records to w.
func NewMsgpackSink(w io.Writer) *MsgpackSink {
	return &MsgpackSink{enc: msgpack.NewEncoder(w)}
}

// Write encodes res.
func (s *MsgpackSink) Write(res DocumentResult) error {
	return s.enc.Encode(NewRecord(res))
}

// NewSink picks a machine-readable sink by format name. The "text" format
// is rendered by the CLI and is not handled here.
func NewSink(format string, w io.Writer) (Sink, error) {
	switch format {
	case "json":
		return NewJSONSink(w), nil
	case "msgpack":
		return NewMsgpackSink(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}
