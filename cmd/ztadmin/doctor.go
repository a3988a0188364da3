package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ztgui/ztadmin/internal/recovery"
)

var flagDoctorYes bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the backend and repair it if broken",
	Args:  cobra.NoArgs,
	RunE:  doDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&flagDoctorYes, "yes", false, "answer yes to all repair prompts")
}

func doDoctor(cmd *cobra.Command, _ []string) error {
	if err := ensureCredential(cmd); err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if !app.settings.ServiceEnabled() {
		fmt.Fprintln(out, "backend is disabled in settings; nothing to diagnose")
		return nil
	}

	// A system-scope unit running alongside the user-scope one fights over
	// the backend's port. Offer to disable it before probing.
	if app.services.SystemScopeActive(ctx) {
		fmt.Fprintf(out, "a system-scope %s unit is active and conflicts with the user install\n", app.cfg.Unit)
		if confirm("disable the system-scope unit?") {
			if err := app.services.DisableSystemScope(ctx); err != nil {
				return err
			}
			fmt.Fprintln(out, "system-scope unit disabled")
		} else {
			slog.Warn("system-scope unit left active", "unit", app.cfg.Unit)
		}
	}

	machine := recovery.NewMachine(
		app.client,
		app.services,
		recovery.NewScriptInstaller(app.exec, app.cfg.InstallerURL, app.homeDir),
		app.cfg.MaxReinstallAttempts,
		func(err error) bool {
			fmt.Fprintf(out, "backend check failed: %v\n", err)
			return confirm("reinstall the backend?")
		},
	)
	if err := machine.Run(ctx); err != nil {
		return err
	}

	fmt.Fprintln(out, app.palette.Good("backend is healthy"))
	return nil
}

// confirm asks a yes/no question on the terminal. --yes answers every
// question affirmatively.
func confirm(question string) bool {
	if flagDoctorYes {
		return true
	}
	fmt.Fprintf(os.Stderr, "%s [y/N] ", question)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
