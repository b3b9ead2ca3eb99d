package process

import "encoding/json"

// One request and one response per line, each a JSON object. A worker
// answers requests in the order it receives them.
type (
	request struct {
		Seq int             `json:"seq"`
		Fn  string          `json:"fn"`
		In  json.RawMessage `json:"in"`
	}

	response struct {
		Seq int             `json:"seq"`
		Out json.RawMessage `json:"out,omitempty"`
		Err string          `json:"err,omitempty"`
	}
)

// A RemoteError is a transform failure reported by a worker process. Only
// the message survives the process boundary.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}
