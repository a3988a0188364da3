// Package ztone invokes the backend's command-line management tool and
// turns its noisy text output into typed results. It classifies the tool's
// exit codes into a fixed taxonomy but never attempts repairs itself; that
// is the recovery package's job.
package ztone

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ztgui/ztadmin/internal/executor"
	"github.com/ztgui/ztadmin/internal/jsontext"
)

// ErrUnexpectedStatusLine is returned when the status output cannot be
// split into its documented fields.
var ErrUnexpectedStatusLine = errors.New("unexpected backend status line")

// SettingsReader supplies the persisted service_enabled flag
type SettingsReader interface {
	ServiceEnabled() bool
}

// Client drives the backend management tool through the executor.
type Client struct {
	exec     executor.Executor
	settings SettingsReader

	// dataDir is the backend data directory, used both as -D argument and
	// as working directory
	dataDir string

	// tool is the management binary, resolved relative to dataDir
	tool string
}

// NewClient creates a backend CLI client
func NewClient(exec executor.Executor, settings SettingsReader, dataDir, tool string) *Client {
	return &Client{exec: exec, settings: settings, dataDir: dataDir, tool: tool}
}

// Run invokes the backend tool with args. When the persisted
// service_enabled flag is off it returns an empty string without spawning
// anything; this is a deliberate no-op, not an error. Failures are
// classified into the exit-code taxonomy.
func (c *Client) Run(ctx context.Context, args ...string) (string, error) {
	return c.run(ctx, false, args)
}

// RunMerged is Run with stderr folded into the returned output. Some
// subcommands report usage errors on stderr only.
func (c *Client) RunMerged(ctx context.Context, args ...string) (string, error) {
	return c.run(ctx, true, args)
}

func (c *Client) run(ctx context.Context, mergeStderr bool, args []string) (string, error) {
	if !c.settings.ServiceEnabled() {
		slog.Debug("backend service disabled in settings, skipping invocation", "args", strings.Join(args, " "))
		return "", nil
	}

	argv := append([]string{c.tool, "-D" + c.dataDir}, args...)
	result, err := c.exec.Execute(ctx, executor.Spec{
		Argv:        argv,
		WorkDir:     c.dataDir,
		Privileged:  true,
		MergeStderr: mergeStderr,
	})
	if err != nil {
		var procErr *executor.ProcessError
		if errors.As(err, &procErr) {
			return "", classify(procErr.ExitCode, procErr.Output)
		}
		return "", err
	}
	return result.Stdout, nil
}

// ListNetworks returns the joined networks. A disabled backend yields an
// empty listing.
func (c *Client) ListNetworks(ctx context.Context) ([]Network, error) {
	output, err := c.Run(ctx, "-j", "listnetworks")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(output) == "" {
		return nil, nil
	}

	payload, err := jsontext.ExtractFirstJSON(output)
	if err != nil {
		return nil, fmt.Errorf("listnetworks output: %w", err)
	}

	var networks []Network
	if err := json.Unmarshal([]byte(payload), &networks); err != nil {
		return nil, fmt.Errorf("failed to decode network list: %w", err)
	}
	return networks, nil
}

// ListPeers returns the known peers. A disabled backend yields an empty
// listing.
func (c *Client) ListPeers(ctx context.Context) ([]Peer, error) {
	output, err := c.Run(ctx, "-j", "peers")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(output) == "" {
		return nil, nil
	}

	payload, err := jsontext.ExtractFirstJSON(output)
	if err != nil {
		return nil, fmt.Errorf("peers output: %w", err)
	}

	var peers []Peer
	if err := json.Unmarshal([]byte(payload), &peers); err != nil {
		return nil, fmt.Errorf("failed to decode peer list: %w", err)
	}
	return peers, nil
}

// PeerPaths returns the physical paths of the peer with the given address.
func (c *Client) PeerPaths(ctx context.Context, address string) ([]PeerPath, error) {
	peers, err := c.ListPeers(ctx)
	if err != nil {
		return nil, err
	}
	for _, peer := range peers {
		if peer.Address == address {
			return peer.Paths, nil
		}
	}
	return nil, fmt.Errorf("no peer with address %q", address)
}

// Join joins the network with the given ID
func (c *Client) Join(ctx context.Context, networkID string) error {
	_, err := c.Run(ctx, "join", networkID)
	return err
}

// Leave leaves the network with the given ID
func (c *Client) Leave(ctx context.Context, networkID string) error {
	_, err := c.Run(ctx, "leave", networkID)
	return err
}

// Probe runs a harmless listing command to check that the backend is
// reachable. Its classified error drives the recovery machine.
func (c *Client) Probe(ctx context.Context) error {
	_, err := c.Run(ctx, "listnetworks")
	return err
}

// Status returns the node's address, version and health word, parsed from
// the backend's whitespace-separated status line
// ("200 info <address> <version> <health>").
func (c *Client) Status(ctx context.Context) (*NodeStatus, error) {
	output, err := c.Run(ctx, "status")
	if err != nil {
		return nil, err
	}

	fields := strings.Fields(output)
	if len(fields) < 5 {
		return nil, fmt.Errorf("%w: %q", ErrUnexpectedStatusLine, strings.TrimSpace(output))
	}
	return &NodeStatus{Address: fields[2], Version: fields[3], Health: fields[4]}, nil
}

// SetNetworkFlag sets a boolean per-network option such as allowDNS. The
// tool only accepts integer values, and reports usage errors on stderr.
func (c *Client) SetNetworkFlag(ctx context.Context, networkID, flag string, value bool) error {
	intValue := 0
	if value {
		intValue = 1
	}
	_, err := c.RunMerged(ctx, "set", networkID, fmt.Sprintf("%s=%d", flag, intValue))
	return err
}
