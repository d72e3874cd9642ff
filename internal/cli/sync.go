package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"todo-tracker/internal/snapshot"
	"todo-tracker/internal/syncer"
	"todo-tracker/pkg/logger"
)

func (a *App) sync(ctx context.Context, args []string) error {
	fs := newFlagSet("sync")
	var detach bool
	fs.BoolVar(&detach, "detach", false, "Run the sync round in a background process")
	fs.BoolVar(&detach, "d", false, "Run the sync round in a background process")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	if detach {
		return a.detachSync()
	}

	var secrets snapshot.Secrets
	if a.cfg.Sync.RedisEnabled() {
		s, err := a.secrets()
		if err != nil {
			logger.Warn(ctx, "Keyring unavailable; using the password from the Redis URL only", "error", err)
		} else {
			secrets = s
		}
	}

	s, err := syncer.Open(ctx, a.cfg.Sync, a.store, secrets)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.Run(ctx)
	if err != nil {
		return err
	}
	a.success("✓ Sync complete: %s", res)
	return nil
}

// detachSync starts `todo sync` again as a separate process and returns
// without waiting for it.
func (a *App) detachSync() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating executable: %w", err)
	}
	args := []string{"sync"}
	if a.configPath != "" {
		args = append([]string{"--config", a.configPath}, args...)
	}

	start := a.startDetached
	if start == nil {
		start = startProcess
	}
	pid, err := start(exe, args...)
	if err != nil {
		return fmt.Errorf("starting background sync: %w", err)
	}
	a.success("✓ Sync started in the background (pid %d)", pid)
	return nil
}

func startProcess(name string, args ...string) (int, error) {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid
	return pid, cmd.Process.Release()
}
