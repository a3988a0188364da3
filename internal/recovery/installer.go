package recovery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ztgui/ztadmin/internal/executor"
)

// ScriptInstaller fetches the backend installation script and pipes it
// through a shell. It runs unprivileged; the script itself elevates where
// it needs to.
type ScriptInstaller struct {
	exec executor.Executor

	// url is the installation script location
	url string

	// workDir is where the script runs, normally the user's home directory
	workDir string
}

// NewScriptInstaller creates a ScriptInstaller
func NewScriptInstaller(exec executor.Executor, url, workDir string) *ScriptInstaller {
	return &ScriptInstaller{exec: exec, url: url, workDir: workDir}
}

// Install implements Installer
func (i *ScriptInstaller) Install(ctx context.Context) error {
	slog.Info("fetching and running backend installer", "url", i.url)

	_, err := i.exec.Execute(ctx, executor.Spec{
		Argv:    []string{"sh", "-c", fmt.Sprintf("curl -s %s | bash", i.url)},
		WorkDir: i.workDir,
	})
	if err != nil {
		return fmt.Errorf("installer script failed: %w", err)
	}
	return nil
}
