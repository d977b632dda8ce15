package access

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/dmitrijs2005/gradekeeper/internal/logging"
	"github.com/dmitrijs2005/gradekeeper/internal/models"
)

//go:embed model.conf
var modelText string

//go:embed default_policy.csv
var defaultPolicy []byte

// Authorizer is what the services need from access control.
type Authorizer interface {
	Authorize(ctx context.Context, id models.Identity, action Action) (bool, error)
	AddTeacher(ctx context.Context, userID string) error
}

// Control evaluates rules with a casbin enforcer loaded from the policy file.
type Control struct {
	enforcer *casbin.SyncedEnforcer
	path     string
	fileMu   sync.Mutex
	logger   logging.Logger
}

var _ Authorizer = (*Control)(nil)

// New loads the rule file at path, creating it with the default rule set
// when it does not exist yet.
func New(path string, logger logging.Logger) (*Control, error) {
	if err := EnsurePolicyFile(path); err != nil {
		return nil, err
	}

	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("access model: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(path))
	if err != nil {
		return nil, fmt.Errorf("load policy %s: %w", path, err)
	}
	// The file adapter can only rewrite the whole file; grouping facts are
	// appended by AddTeacher instead.
	e.EnableAutoSave(false)

	return &Control{enforcer: e, path: path, logger: logger.With("component", "access")}, nil
}

// EnsurePolicyFile writes the default rule set to path if it is missing.
func EnsurePolicyFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, defaultPolicy, 0o600)
}

// Authorize reports whether id may perform action, either directly or
// through a role it is grouped into.
func (c *Control) Authorize(ctx context.Context, id models.Identity, action Action) (bool, error) {
	ok, err := c.enforcer.Enforce(id.ID, string(action))
	if err != nil {
		c.logger.Error(ctx, "policy evaluation failed", "subject", id.ID, "action", action, "error", err)
		return false, err
	}
	c.logger.Debug(ctx, "authorize", "subject", id.ID, "action", action, "allowed", ok)
	return ok, nil
}

// AddTeacher appends "g, <userID>, teacher" to the rule file and loads the
// fact into the running enforcer.
func (c *Control) AddTeacher(ctx context.Context, userID string) error {
	if err := c.appendLine(fmt.Sprintf("g, %s, %s", userID, RoleTeacher)); err != nil {
		return fmt.Errorf("append grouping fact: %w", err)
	}
	if _, err := c.enforcer.AddGroupingPolicy(userID, RoleTeacher); err != nil {
		return fmt.Errorf("add grouping fact: %w", err)
	}
	c.logger.Info(ctx, "teacher role granted", "subject", userID)
	return nil
}

// Reload re-reads the rule file.
func (c *Control) Reload() error {
	return c.enforcer.LoadPolicy()
}

func (c *Control) appendLine(line string) error {
	c.fileMu.Lock()
	defer c.fileMu.Unlock()

	f, err := os.OpenFile(c.path, os.O_RDWR|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	var buf bytes.Buffer
	if needsNewline(f) {
		buf.WriteByte('\n')
	}
	buf.WriteString(line)
	buf.WriteByte('\n')

	if _, err := f.Write(buf.Bytes()); err != nil {
		return err
	}
	return f.Sync()
}

// needsNewline reports whether the file is non-empty and lacks a trailing newline.
func needsNewline(f *os.File) bool {
	st, err := f.Stat()
	if err != nil || st.Size() == 0 {
		return false
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, st.Size()-1); err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	return last[0] != '\n'
}
