// Package socket implements a JSON-over-Unix-socket protocol through which a
// running `acmatch watch` serves matches from its live automaton.
// The protocol uses newline-delimited JSON: each message is one JSON object + \n.
package socket

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"path/filepath"
)

// SocketPath returns the Unix socket path for a given project root.
// Format: /tmp/acmatch-{first12hex}.sock
func SocketPath(projectRoot string) string {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	h := sha256.Sum256([]byte(abs))
	return fmt.Sprintf("/tmp/acmatch-%x.sock", h[:6])
}

// Method names for the protocol.
const (
	MethodMatch    = "match"
	MethodHealth   = "health"
	MethodShutdown = "shutdown"
)

// Request is the wire format for client-to-server messages.
type Request struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is the wire format for server-to-client messages. Result is a
// value on the server and raw JSON once decoded by the client.
type Response struct {
	ID     uint64 `json:"id"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// MatchParams is the params for a match request. Text travels base64
// encoded, so any bytes survive.
type MatchParams struct {
	Text     []byte `json:"text"`
	Leftmost bool   `json:"leftmost,omitempty"`
	Decode   bool   `json:"decode,omitempty"`
}

// MatchResult is the result of a match request.
type MatchResult struct {
	Set     string     `json:"set"`
	Charset string     `json:"charset,omitempty"`
	Hits    []MatchHit `json:"hits"`
	Count   int        `json:"count"`
	Elapsed string     `json:"elapsed"`
}

// MatchHit is a single occurrence (wire format). End is exclusive.
type MatchHit struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Value string `json:"value"`
}

// HealthResult is the result of a health request.
type HealthResult struct {
	Status   string `json:"status"`
	Set      string `json:"set"`
	Patterns int    `json:"patterns"`
	Nodes    int    `json:"nodes"`
	Reloads  int    `json:"reloads"`
	Uptime   string `json:"uptime"`
}
