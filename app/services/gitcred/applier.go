// Package gitcred turns a repository URL plus decrypted credential
// fields into a concrete git clone invocation: an SSH key materialized
// to a scoped temporary file, or an HTTPS URL with the token embedded
// as userinfo.
package gitcred

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/labstack/gommon/random"
)

// ValidationError reports a repository/credential mismatch, e.g. an SSH
// URL without a private key.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// scp-like syntax: git@host:org/repo.git
var scpLikeRe = regexp.MustCompile(`^[0-9A-Za-z_.-]+@[0-9A-Za-z_.-]+:`)

// Invocation is a prepared clone command. Cleanup must run after the
// git process exits, on success and failure alike: a leaked key file on
// disk is a security defect.
type Invocation struct {
	Args []string
	Env  []string

	keyPath string
}

// Cleanup removes the temporary SSH key file, if one was written. Safe
// to call more than once.
func (inv *Invocation) Cleanup() error {
	if inv.keyPath == "" {
		return nil
	}
	err := os.Remove(inv.keyPath)
	inv.keyPath = ""
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// KeyPath exposes the materialized key location for tests and logging.
// Empty for HTTPS and public clones.
func (inv *Invocation) KeyPath() string { return inv.keyPath }

type Applier struct {
	// where temporary key files are written; defaults to os.TempDir
	tmpDir string
}

func New() *Applier {
	return &Applier{tmpDir: os.TempDir()}
}

func NewWithTmpDir(dir string) *Applier {
	return &Applier{tmpDir: dir}
}

// Apply derives the clone invocation for repoURL. The caller appends
// the destination directory to Args and is responsible for calling
// Cleanup once the process has exited.
func (a *Applier) Apply(repoURL string, fields map[string]any) (*Invocation, error) {
	if isSSH(repoURL) {
		return a.applySSH(repoURL, fields)
	}
	return applyHTTP(repoURL, fields)
}

func isSSH(repoURL string) bool {
	if strings.HasPrefix(repoURL, "ssh://") || strings.HasPrefix(repoURL, "git://") {
		return true
	}
	return scpLikeRe.MatchString(repoURL)
}

func (a *Applier) applySSH(repoURL string, fields map[string]any) (*Invocation, error) {
	key, _ := fields["private_key"].(string)
	if key == "" {
		return nil, &ValidationError{Reason: "SSH repository requires a private key credential"}
	}

	keyPath := filepath.Join(a.tmpDir, "quore-ssh-"+random.String(16))
	// ssh rejects keys without a trailing newline
	if !strings.HasSuffix(key, "\n") {
		key += "\n"
	}
	if err := os.WriteFile(keyPath, []byte(key), 0600); err != nil {
		return nil, fmt.Errorf("failed to write ssh key file: %w", err)
	}

	env := append(os.Environ(),
		fmt.Sprintf("GIT_SSH_COMMAND=ssh -i %s -o StrictHostKeyChecking=no", keyPath))

	return &Invocation{
		Args:    []string{"git", "clone", repoURL},
		Env:     env,
		keyPath: keyPath,
	}, nil
}

func applyHTTP(repoURL string, fields map[string]any) (*Invocation, error) {
	token, _ := fields["token"].(string)
	cloneURL := repoURL

	if token != "" {
		parsed, err := url.Parse(repoURL)
		if err != nil {
			return nil, &ValidationError{Reason: "invalid repository URL: " + err.Error()}
		}
		parsed.User = url.User(token)
		cloneURL = parsed.String()
	}

	return &Invocation{
		Args: []string{"git", "clone", cloneURL},
		Env:  os.Environ(),
	}, nil
}
