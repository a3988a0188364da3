package main

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// networkFlags is the closed set of per-network boolean options the backend
// tool accepts via its set subcommand.
var networkFlags = map[string]bool{
	"allowDefault": true,
	"allowGlobal":  true,
	"allowManaged": true,
	"allowDNS":     true,
}

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List joined networks",
	RunE:  doNetworks,
}

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "List known peers",
	RunE:  doPeers,
}

var pathsCmd = &cobra.Command{
	Use:   "paths <peer-address>",
	Short: "Show the physical paths of a peer",
	Args:  cobra.ExactArgs(1),
	RunE:  doPaths,
}

var joinCmd = &cobra.Command{
	Use:   "join <network-id>",
	Short: "Join a network",
	Args:  cobra.ExactArgs(1),
	RunE:  doJoin,
}

var leaveCmd = &cobra.Command{
	Use:   "leave <network-id>",
	Short: "Leave a network",
	Args:  cobra.ExactArgs(1),
	RunE:  doLeave,
}

var setCmd = &cobra.Command{
	Use:   "set <network-id> <flag> <true|false>",
	Short: "Set a per-network option (allowDefault, allowGlobal, allowManaged, allowDNS)",
	Args:  cobra.ExactArgs(3),
	RunE:  doSet,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show node and service status",
	RunE:  doStatus,
}

func doNetworks(cmd *cobra.Command, _ []string) error {
	if err := ensureCredential(cmd); err != nil {
		return err
	}
	ctx := cmd.Context()

	networks, err := app.client.ListNetworks(ctx)
	if err != nil {
		return err
	}
	if len(networks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no networks joined")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NETWORK ID\tNAME\tSTATUS\tDEVICE\tADDRESSES")
	for _, network := range networks {
		device := network.PortDeviceName
		if device != "" {
			down, err := app.inspector.IsDown(ctx, device)
			if err != nil {
				slog.Debug("interface state lookup failed", "device", device, "error", err)
			} else if down {
				device += " " + app.palette.Warn("(DOWN)")
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			network.ID, network.DisplayName(), app.palette.StatusWord(network.Status),
			device, strings.Join(network.AssignedAddresses, ", "))
	}
	return w.Flush()
}

func doPeers(cmd *cobra.Command, _ []string) error {
	if err := ensureCredential(cmd); err != nil {
		return err
	}

	peers, err := app.client.ListPeers(cmd.Context())
	if err != nil {
		return err
	}
	if len(peers) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no peers known")
		return nil
	}
	sort.Slice(peers, func(i, j int) bool { return peers[i].Address < peers[j].Address })

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ADDRESS\tVERSION\tROLE\tLATENCY\tPATHS")
	for _, peer := range peers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
			peer.Address, peer.DisplayVersion(), peer.Role, peer.Latency, len(peer.Paths))
	}
	return w.Flush()
}

func doPaths(cmd *cobra.Command, args []string) error {
	if err := ensureCredential(cmd); err != nil {
		return err
	}

	paths, err := app.client.PeerPaths(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no paths for peer")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ENDPOINT\tACTIVE\tPREFERRED\tEXPIRED")
	for _, path := range paths {
		fmt.Fprintf(w, "%s\t%t\t%t\t%t\n", path.Address, path.Active, path.Preferred, path.Expired)
	}
	return w.Flush()
}

func doJoin(cmd *cobra.Command, args []string) error {
	if err := ensureCredential(cmd); err != nil {
		return err
	}
	if err := app.client.Join(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "joined %s\n", args[0])
	return nil
}

func doLeave(cmd *cobra.Command, args []string) error {
	if err := ensureCredential(cmd); err != nil {
		return err
	}
	if err := app.client.Leave(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "left %s\n", args[0])
	return nil
}

func doSet(cmd *cobra.Command, args []string) error {
	networkID, flag := args[0], args[1]
	if !networkFlags[flag] {
		return fmt.Errorf("unknown network flag %q (want allowDefault, allowGlobal, allowManaged or allowDNS)", flag)
	}
	value, err := strconv.ParseBool(args[2])
	if err != nil {
		return fmt.Errorf("invalid flag value %q: %w", args[2], err)
	}

	if err := ensureCredential(cmd); err != nil {
		return err
	}
	if err := app.client.SetNetworkFlag(cmd.Context(), networkID, flag, value); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s=%t\n", networkID, flag, value)
	return nil
}

func doStatus(cmd *cobra.Command, _ []string) error {
	if err := ensureCredential(cmd); err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	unitState := app.services.CheckActive(ctx)
	fmt.Fprintf(out, "unit %s: %s\n", app.cfg.Unit, app.palette.StatusWord(string(unitState)))

	if !app.settings.ServiceEnabled() {
		fmt.Fprintln(out, "backend: disabled in settings (ztadmin service enable-backend)")
		return nil
	}

	status, err := app.client.Status(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "node %s: version %s, %s\n",
		status.Address, status.Version, app.palette.StatusWord(status.Health))
	return nil
}
