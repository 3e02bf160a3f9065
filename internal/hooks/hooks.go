// Package hooks runs user-configured shell commands on wizard events, such
// as announcing a newly created job.
package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"al.essio.dev/pkg/shellescape"
	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"github.com/recruitdash/recruitdash/internal/logger"
)

// ConfigFileName is the hooks file looked up in the working directory.
const ConfigFileName = ".recruitdash.hooks.yml"

// DefaultTimeout applies when a hook sets no timeout, in seconds.
const DefaultTimeout = 30

// Config is the contents of the hooks file.
type Config struct {
	Version int         `yaml:"version"`
	Hooks   HooksConfig `yaml:"hooks"`
}

// HooksConfig lists the supported events.
type HooksConfig struct {
	JobCreated     *HookConfig `yaml:"job_created"`
	DraftDiscarded *HookConfig `yaml:"draft_discarded"`
}

// HookConfig is one command.
type HookConfig struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout"`
}

// Event names accepted by For.
const (
	EventJobCreated     = "job_created"
	EventDraftDiscarded = "draft_discarded"
)

// For returns the hook configured for event, or nil. It is safe on a nil
// Config.
func (c *Config) For(event string) *HookConfig {
	if c == nil {
		return nil
	}
	switch event {
	case EventJobCreated:
		return c.Hooks.JobCreated
	case EventDraftDiscarded:
		return c.Hooks.DraftDiscarded
	}
	return nil
}

var log = logger.Named("hooks")

// LoadConfig reads the hooks file from workDir. A missing file is not an
// error and yields nil.
func LoadConfig(workDir string) (*Config, error) {
	path := filepath.Join(workDir, ConfigFileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debug("no hooks config at %s", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse hooks config: %w", err)
	}
	return &cfg, nil
}

// Variables are substituted into commands as {{job_id}}, {{title}},
// {{slug}} and {{profile}}, and exported as RECRUITDASH_* variables.
type Variables struct {
	JobID   int64
	Title   string
	Profile string
}

func (v Variables) values() map[string]string {
	id := ""
	if v.JobID != 0 {
		id = strconv.FormatInt(v.JobID, 10)
	}
	return map[string]string{
		"job_id":  id,
		"title":   v.Title,
		"slug":    slug.Make(v.Title),
		"profile": v.Profile,
	}
}

// Result is the outcome of one hook run.
type Result struct {
	Output   string
	Failed   bool
	TimedOut bool
}

// Execute runs hook through sh -c. Command failures and timeouts are
// reported in the Result, not as errors; only cancellation of ctx is.
func Execute(ctx context.Context, hook *HookConfig, workDir string, vars Variables) (Result, error) {
	if hook == nil || strings.TrimSpace(hook.Command) == "" {
		return Result{}, nil
	}

	command := expandVariables(hook.Command, vars)
	timeout := hook.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "sh", "-c", command)
	cmd.Dir = workDir
	cmd.WaitDelay = 2 * time.Second
	cmd.Env = os.Environ()
	for name, val := range vars.values() {
		cmd.Env = append(cmd.Env, "RECRUITDASH_"+strings.ToUpper(name)+"="+val)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug("running hook: %s", command)
	err := cmd.Run()

	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}
	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		log.Warn("hook timed out after %ds: %s", timeout, command)
		return Result{Output: stdout.String(), Failed: true, TimedOut: true}, nil
	}

	output := stdout.String()
	if stderr.Len() > 0 {
		output += "\n[stderr]\n" + stderr.String()
	}
	if err != nil {
		log.Warn("hook failed: %v", err)
		return Result{Output: output, Failed: true}, nil
	}
	return Result{Output: output}, nil
}

// expandVariables replaces {{name}} placeholders with shell-quoted values,
// so titles containing quotes or semicolons stay one argument.
func expandVariables(command string, vars Variables) string {
	result := command
	for name, val := range vars.values() {
		result = strings.ReplaceAll(result, "{{"+name+"}}", shellescape.Quote(val))
	}
	return result
}
