package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/authkit/authctl/internal/client"
	"github.com/authkit/authctl/internal/config"
	"github.com/authkit/authctl/internal/render"
	"github.com/authkit/authctl/internal/service"
)

// dataDir holds the --data-dir persistent flag value (set on root command).
var dataDir string

// resolveDataDir returns the data directory from --data-dir flag,
// AUTHCTL_DATA_DIR env var, or ~/.authctl as fallback.
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if envDir := os.Getenv("AUTHCTL_DATA_DIR"); envDir != "" {
		return envDir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".authctl")
}

// openConfigStore opens the SQLite session store.
func openConfigStore() (*config.Store, error) {
	store, err := config.NewStore(resolveDataDir())
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return store, nil
}

// env bundles what most commands need: the store, a session manager bound
// to it and a printer on the command's output.
type env struct {
	ctx   context.Context
	store *config.Store
	mgr   *service.SessionManager
	out   *render.Printer
}

func newEnv(cmd *cobra.Command) (*env, error) {
	store, err := openConfigStore()
	if err != nil {
		return nil, err
	}
	return &env{
		ctx:   cmd.Context(),
		store: store,
		mgr:   service.NewSessionManager(store, settings, logger),
		out:   render.NewPrinter(cmd.OutOrStdout(), noColor),
	}, nil
}

func (e *env) Close() {
	e.store.Close()
}

// open returns a client authenticated as the current profile.
func (e *env) open() (*client.Client, error) {
	c, _, err := e.mgr.Open(e.ctx, profile)
	if err != nil {
		return nil, e.fail("open session", err)
	}
	return c, nil
}

// anonymous returns a client without a token.
func (e *env) anonymous() (*client.Client, error) {
	c, err := e.mgr.NewClient()
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return c, nil
}

// roleNames takes the per-command snapshot of role names.
func (e *env) roleNames(c *client.Client) client.RoleNameMap {
	return client.BuildRoleNameMap(e.ctx, c, logger)
}

// fail renders err on the console and marks it as already reported.
func (e *env) fail(op string, err error) error {
	e.out.Failure(op, err)
	logger.Debug("command failed", "op", op, "error", err)
	return &reportedError{err: err}
}

// emit prints v as JSON when --json is set and reports whether it did.
func (e *env) emit(v any) (bool, error) {
	if !jsonOut {
		return false, nil
	}
	return true, e.out.JSON(v)
}

// ---------- error reporting ----------

type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Reported reports whether err was already printed to the console.
func Reported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// ---------- prompts ----------

// readPassword prompts on stderr. On a terminal the input is not echoed;
// otherwise one line is read from the command's input.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	line, err := readLine(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return line, nil
}

// newPassword prompts twice and checks both entries match.
func newPassword(cmd *cobra.Command, prompt string) (string, error) {
	pw, err := readPassword(cmd, prompt)
	if err != nil {
		return "", err
	}
	again, err := readPassword(cmd, "Confirm password: ")
	if err != nil {
		return "", err
	}
	if pw != again {
		return "", fmt.Errorf("passwords do not match")
	}
	return pw, nil
}

// confirm asks a yes/no question; anything but y/yes is a no.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N]: ", question)
	line, err := readLine(cmd.InOrStdin())
	if err != nil {
		return false
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true
	}
	return false
}

// readLine reads up to a newline one byte at a time so consecutive prompts
// on the same reader never lose buffered input.
func readLine(r io.Reader) (string, error) {
	var b strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				break
			}
			b.WriteByte(buf[0])
		}
		if err != nil {
			if errors.Is(err, io.EOF) && b.Len() > 0 {
				break
			}
			return "", err
		}
	}
	return strings.TrimRight(b.String(), "\r"), nil
}
