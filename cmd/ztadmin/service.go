package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ztgui/ztadmin/internal/service"
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Control the backend service unit",
}

func init() {
	serviceCmd.AddCommand(
		serviceActionCmd("start", service.ActionStart),
		serviceActionCmd("stop", service.ActionStop),
		serviceActionCmd("enable", service.ActionEnable),
		serviceActionCmd("disable", service.ActionDisable),
		serviceStatusCmd,
		backendToggleCmd("enable-backend", true),
		backendToggleCmd("disable-backend", false),
	)
}

// serviceActionCmd builds a subcommand forwarding one unit action through
// the controller, user scope first.
func serviceActionCmd(name string, action service.Action) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("%s the backend unit", name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := ensureCredential(cmd); err != nil {
				return err
			}
			if _, err := app.services.Manage(cmd.Context(), action); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", app.cfg.Unit, name)
			return nil
		},
	}
}

var serviceStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the unit's active state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := ensureCredential(cmd); err != nil {
			return err
		}
		state, err := app.services.ActiveState(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", app.cfg.Unit, app.palette.StatusWord(string(state)))
		return nil
	},
}

// backendToggleCmd builds the enable-backend/disable-backend subcommands.
// They flip the persisted service_enabled flag and align the unit with it,
// so a disabled backend stays down across reboots.
func backendToggleCmd(name string, enabled bool) *cobra.Command {
	short := "Disable the backend and stop its unit"
	if enabled {
		short = "Enable the backend and start its unit"
	}
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := ensureCredential(cmd); err != nil {
				return err
			}
			if err := app.settings.SetServiceEnabled(enabled); err != nil {
				return err
			}

			actions := []service.Action{service.ActionStop, service.ActionDisable}
			if enabled {
				actions = []service.Action{service.ActionEnable, service.ActionStart}
			}
			for _, action := range actions {
				if _, err := app.services.Manage(cmd.Context(), action); err != nil {
					return err
				}
			}

			state := "disabled"
			if enabled {
				state = "enabled"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backend %s\n", state)
			return nil
		},
	}
}
