// Package netdev reports the operational state of network interfaces by
// querying the host's ip tool. The backend exposes each joined network as a
// virtual interface; listings mark networks whose interface is down.
package netdev

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ztgui/ztadmin/internal/executor"
	"github.com/ztgui/ztadmin/internal/jsontext"
)

// StateUnknown is reported for interfaces the host does not list.
const StateUnknown = "UNKNOWN"

// addressEntry is the slice element of `ip --json address` output.
type addressEntry struct {
	IfName    string `json:"ifname"`
	OperState string `json:"operstate"`
}

// Inspector queries interface state through the executor.
type Inspector struct {
	exec    executor.Executor
	workDir string
}

// NewInspector creates an Inspector running from workDir
func NewInspector(exec executor.Executor, workDir string) *Inspector {
	return &Inspector{exec: exec, workDir: workDir}
}

// OperState returns the operational state (UP, DOWN, ...) of the named
// interface, or StateUnknown when the host does not list it.
func (i *Inspector) OperState(ctx context.Context, ifname string) (string, error) {
	result, err := i.exec.Execute(ctx, executor.Spec{
		Argv:    []string{"ip", "--json", "address"},
		WorkDir: i.workDir,
	})
	if err != nil {
		return "", fmt.Errorf("failed to query interface state: %w", err)
	}

	payload, err := jsontext.ExtractFirstJSON(result.Stdout)
	if err != nil {
		return "", fmt.Errorf("ip address output: %w", err)
	}

	var entries []addressEntry
	if err := json.Unmarshal([]byte(payload), &entries); err != nil {
		return "", fmt.Errorf("failed to decode interface list: %w", err)
	}

	for _, entry := range entries {
		if entry.IfName == ifname {
			return entry.OperState, nil
		}
	}
	return StateUnknown, nil
}

// IsDown reports whether the named interface is administratively down.
// Unknown interfaces are not considered down.
func (i *Inspector) IsDown(ctx context.Context, ifname string) (bool, error) {
	state, err := i.OperState(ctx, ifname)
	if err != nil {
		return false, err
	}
	return state == "DOWN", nil
}
