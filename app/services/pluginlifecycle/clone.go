package pluginlifecycle

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	shellwords "github.com/mattn/go-shellwords"
	log "github.com/sirupsen/logrus"

	"quore/domain/plugin"
)

// CloneError wraps any failure during repository clone so callers can
// distinguish it from inspection failures.
type CloneError struct {
	Err error
}

func (e *CloneError) Error() string {
	return fmt.Sprintf("plugin clone failed: %v", e.Err)
}

func (e *CloneError) Unwrap() error {
	return e.Err
}

// CommandRunner executes an external command and returns its combined
// output. Tests substitute a fake.
type CommandRunner func(ctx context.Context, args []string, env []string, dir string) ([]byte, error)

func runCommand(ctx context.Context, args []string, env []string, dir string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Env = env
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// CloneRepository clones the plugin's repository into the clone root,
// applying workspace credentials when the plugin references one. A
// previous checkout is removed first so every clone starts from a clean
// slate. Concurrent clones of the same plugin are serialized.
func (m *Manager) CloneRepository(ctx context.Context, p *plugin.Plugin) error {
	mu := m.lockFor(p.ID)
	mu.Lock()
	defer mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, m.cloneTimeout)
	defer cancel()

	if err := checkDiskSpace(m.cloneRoot); err != nil {
		return &CloneError{Err: err}
	}

	fields, err := m.CredentialFields(ctx, p)
	if err != nil {
		return &CloneError{Err: err}
	}

	inv, err := m.applier.Apply(p.RepositoryURL, fields)
	if err != nil {
		return &CloneError{Err: err}
	}
	defer inv.Cleanup()

	dest := filepath.Join(m.cloneRoot, p.ID)
	if err := os.RemoveAll(dest); err != nil {
		return &CloneError{Err: fmt.Errorf("cleaning clone destination: %w", err)}
	}
	if err := os.MkdirAll(m.cloneRoot, 0o755); err != nil {
		return &CloneError{Err: fmt.Errorf("creating clone root: %w", err)}
	}

	args := inv.Args
	if extra, err := cloneArgs(p); err != nil {
		return &CloneError{Err: err}
	} else {
		args = append(args, extra...)
	}
	args = append(args, dest)

	log.WithFields(log.Fields{
		"plugin_id": p.ID,
		"dest":      dest,
	}).Info("cloning plugin repository")

	out, err := m.run(ctx, args, inv.Env, m.cloneRoot)
	if err != nil {
		// partial checkouts are not reusable
		os.RemoveAll(dest)
		return &CloneError{Err: fmt.Errorf("git clone: %w: %s", err, string(out))}
	}
	return nil
}

// cloneArgs parses extra git arguments out of the plugin metadata key
// "clone_args", e.g. "--depth 1 --branch main".
func cloneArgs(p *plugin.Plugin) ([]string, error) {
	raw, ok := p.PluginMetadata["clone_args"]
	if !ok {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return nil, nil
	}
	parsed, err := shellwords.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("parsing clone_args: %w", err)
	}
	return parsed, nil
}
