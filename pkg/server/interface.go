/*
Package server exposes a trained keyword model to other processes.

Two transports share one Service: a msgpack IPC loop over stdin/stdout for
editor integrations, and a JSON HTTP API.

# IPC

Clients write msgpack-encoded Request values to stdin and read one response
value per request from stdout. The first value written by the server is a
status message announcing readiness:

	{"id": "", "status": "ready"}

Every request carries an ID, echoed in the response, and an action:

	{"id": "r1", "action": "recommend", "fn": "plot", "l": 5}
	{"id": "r2", "action": "complete", "p": "sc", "l": 10}
	{"id": "r3", "action": "analyze", "lines": ["plt.plot(x, lw=2)"]}
	{"id": "r4", "action": "train", "path": "/tmp/train.py"}
	{"id": "r5", "action": "model"}
	{"id": "r6", "action": "health"}

Recommendations come back ranked by frequency:

	{"id": "r1", "fn": "plot", "s": [{"k": "markersize", "f": 0.667, "r": 1}], "c": 1, "t": 12}

Failed requests get an ErrorResponse with an HTTP-like code: 400 for
malformed input, 404 for a function outside the trained vocabulary, 409 when
no model is loaded yet, 500 for anything else.

Models trained through the train action are cached by absolute path, so
switching back and forth between training documents does not re-read them.
*/
package server

import (
	"github.com/bastiangx/kwserve/pkg/analysis"
	"github.com/bastiangx/kwserve/pkg/model"
)

// Request actions.
const (
	ActionRecommend = "recommend"
	ActionComplete  = "complete"
	ActionAnalyze   = "analyze"
	ActionTrain     = "train"
	ActionModel     = "model"
	ActionHealth    = "health"
)

// Request is any client message; which fields matter depends on Action.
type Request struct {
	ID       string   `msgpack:"id" json:"id"`
	Action   string   `msgpack:"action" json:"action"`
	Function string   `msgpack:"fn,omitempty" json:"function,omitempty"`
	Prefix   string   `msgpack:"p,omitempty" json:"prefix,omitempty"`
	Limit    int      `msgpack:"l,omitempty" json:"limit,omitempty"`
	Lines    []string `msgpack:"lines,omitempty" json:"lines,omitempty"`
	Path     string   `msgpack:"path,omitempty" json:"path,omitempty"`
	Reload   bool     `msgpack:"reload,omitempty" json:"reload,omitempty"`
}

// Suggestion is one ranked keyword.
type Suggestion struct {
	Keyword   string  `msgpack:"k" json:"keyword"`
	Frequency float64 `msgpack:"f" json:"frequency"`
	Rank      uint16  `msgpack:"r" json:"rank"`
}

// RecommendResponse answers a recommend request. An empty Suggestions
// list means the function is known but has no recommendation.
type RecommendResponse struct {
	ID          string       `msgpack:"id" json:"id,omitempty"`
	Function    string       `msgpack:"fn" json:"function"`
	Suggestions []Suggestion `msgpack:"s" json:"suggestions"`
	Count       int          `msgpack:"c" json:"count"`
	TimeTaken   int64        `msgpack:"t" json:"time_us"`
}

// CompleteResponse lists known function names for a prefix.
type CompleteResponse struct {
	ID        string   `msgpack:"id" json:"id,omitempty"`
	Functions []string `msgpack:"s" json:"functions"`
	Count     int      `msgpack:"c" json:"count"`
	TimeTaken int64    `msgpack:"t" json:"time_us"`
}

// AnalyzeResponse carries the report for submitted lines.
type AnalyzeResponse struct {
	ID        string           `msgpack:"id" json:"id,omitempty"`
	Report    *analysis.Report `msgpack:"report" json:"report"`
	TimeTaken int64            `msgpack:"t" json:"time_us"`
}

// TrainResponse reports a model switch.
type TrainResponse struct {
	ID        string `msgpack:"id" json:"id,omitempty"`
	Status    string `msgpack:"status" json:"status"`
	Path      string `msgpack:"path" json:"path"`
	Cached    bool   `msgpack:"cached" json:"cached"`
	Functions int    `msgpack:"functions" json:"functions"`
	Keywords  int    `msgpack:"keywords" json:"keywords"`
}

// ModelResponse is a tabular copy of the current model.
type ModelResponse struct {
	ID    string         `msgpack:"id" json:"id,omitempty"`
	Model model.Snapshot `msgpack:"model" json:"model"`
	Stats map[string]int `msgpack:"stats" json:"stats"`
}

// StatusResponse is used for readiness and health.
type StatusResponse struct {
	ID     string `msgpack:"id" json:"id,omitempty"`
	Status string `msgpack:"status" json:"status"`
}

// ErrorResponse holds basic error information for a failed request.
type ErrorResponse struct {
	ID    string `msgpack:"id" json:"id,omitempty"`
	Error string `msgpack:"e" json:"error"`
	Code  int    `msgpack:"c" json:"status"`
}
