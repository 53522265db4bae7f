package socket

import (
	"encoding/json"
	"fmt"
	"net"
	"sync/atomic"
	"time"
)

// Client talks to a serving watcher. Each call uses its own connection.
type Client struct {
	sockPath string
	nextID   atomic.Uint64
}

// NewClient creates a client for the socket at sockPath.
func NewClient(sockPath string) *Client {
	return &Client{sockPath: sockPath}
}

// Match sends text to be matched by the live automaton.
func (c *Client) Match(text []byte, leftmost, decode bool) (*MatchResult, error) {
	var res MatchResult
	params := MatchParams{Text: text, Leftmost: leftmost, Decode: decode}
	if err := c.call(MethodMatch, params, &res, 30*time.Second); err != nil {
		return nil, err
	}
	return &res, nil
}

// Health reports what the watcher is serving.
func (c *Client) Health() (*HealthResult, error) {
	var res HealthResult
	if err := c.call(MethodHealth, nil, &res, 5*time.Second); err != nil {
		return nil, err
	}
	return &res, nil
}

// Shutdown asks the watcher to exit.
func (c *Client) Shutdown() error {
	return c.call(MethodShutdown, nil, nil, 5*time.Second)
}

// Ping reports whether anything answers on the socket.
func (c *Client) Ping() bool {
	conn, err := net.DialTimeout("unix", c.sockPath, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// call sends one request and decodes the result into out, which may be nil.
func (c *Client) call(method string, params, out any, timeout time.Duration) error {
	req := Request{ID: c.nextID.Add(1), Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("marshal params: %w", err)
		}
		req.Params = raw
	}

	conn, err := net.DialTimeout("unix", c.sockPath, 2*time.Second)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(timeout))

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	var resp struct {
		ID     uint64          `json:"id"`
		Result json.RawMessage `json:"result"`
		Error  string          `json:"error"`
	}
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.Error != "" {
		return fmt.Errorf("server error: %s", resp.Error)
	}
	if resp.ID != req.ID {
		return fmt.Errorf("response id %d does not match request %d", resp.ID, req.ID)
	}
	if out == nil || len(resp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}
