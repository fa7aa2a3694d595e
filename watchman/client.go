// Package watchman is a minimal client for the Watchman file-watch service.
// It drives the watchman binary's JSON command mode rather than speaking the
// socket protocol directly; each call is one short-lived subprocess.
package watchman

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
)

// Client issues commands to a watchman binary.
type Client struct {
	bin string
}

// Option configures a Client.
type Option func(c *Client)

// WithBinary overrides the watchman binary name or path.
func WithBinary(bin string) Option {
	return func(c *Client) {
		c.bin = bin
	}
}

// New returns a client for the watchman binary on PATH.
func New(opts ...Option) *Client {
	c := &Client{bin: "watchman"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available reports whether the watchman service can be reached: the binary
// is on PATH and answers a version command.
func (c *Client) Available(ctx context.Context) bool {
	if _, err := exec.LookPath(c.bin); err != nil {
		return false
	}
	_, err := c.command(ctx, "version")
	return err == nil
}

// WatchProject asks watchman to watch the project containing root and
// returns the watched root plus the relative path of root within it.
func (c *Client) WatchProject(ctx context.Context, root string) (watchRoot, relPath string, err error) {
	raw, err := c.command(ctx, "watch-project", root)
	if err != nil {
		return "", "", err
	}
	var resp struct {
		Watch        string `json:"watch"`
		RelativePath string `json:"relative_path"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", "", fmt.Errorf("decoding watch-project response: %w", err)
	}
	return resp.Watch, resp.RelativePath, nil
}

// Clock returns the current clock of a watched root, used as the starting
// point for since queries.
func (c *Client) Clock(ctx context.Context, root string) (string, error) {
	raw, err := c.command(ctx, "clock", root)
	if err != nil {
		return "", err
	}
	var resp struct {
		Clock string `json:"clock"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decoding clock response: %w", err)
	}
	return resp.Clock, nil
}

// Query is a watchman file query.
type Query struct {
	Expression   Expr     `json:"expression"`
	Fields       []string `json:"fields"`
	Since        string   `json:"since,omitempty"`
	RelativeRoot string   `json:"relative_root,omitempty"`
}

// QueryResult is the subset of a query response this module consumes.
type QueryResult struct {
	Clock string   `json:"clock"`
	Files []string `json:"files"`
}

// RunQuery evaluates a file query against a watched root. The query always
// selects name-only results.
func (c *Client) RunQuery(ctx context.Context, root string, q Query) (*QueryResult, error) {
	q.Fields = []string{"name"}
	raw, err := c.command(ctx, "query", root, q)
	if err != nil {
		return nil, err
	}
	var result QueryResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decoding query response: %w", err)
	}
	return &result, nil
}

// command runs one watchman JSON command and returns the raw response after
// checking it for a protocol-level error.
func (c *Client) command(ctx context.Context, args ...interface{}) (json.RawMessage, error) {
	input, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encoding watchman command: %w", err)
	}
	cmd := exec.CommandContext(ctx, c.bin, "--no-pretty", "-j")
	cmd.Stdin = bytes.NewReader(input)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("running %s %v: %w", c.bin, args[0], err)
	}
	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(out, &errResp); err != nil {
		return nil, fmt.Errorf("decoding watchman response: %w", err)
	}
	if errResp.Error != "" {
		return nil, fmt.Errorf("watchman %v: %s", args[0], errResp.Error)
	}
	return json.RawMessage(out), nil
}
