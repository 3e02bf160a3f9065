// Package app wires configuration, storage, the ATS client and the wizard
// core into one runtime shared by the CLI commands, the terminal wizard and
// the MCP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	natsserver "github.com/nats-io/nats-server/v2/server"

	"github.com/recruitdash/recruitdash/internal/activity"
	"github.com/recruitdash/recruitdash/internal/ats"
	"github.com/recruitdash/recruitdash/internal/config"
	"github.com/recruitdash/recruitdash/internal/draftstore"
	ierr "github.com/recruitdash/recruitdash/internal/errors"
	"github.com/recruitdash/recruitdash/internal/hooks"
	"github.com/recruitdash/recruitdash/internal/logger"
	"github.com/recruitdash/recruitdash/internal/nats"
	"github.com/recruitdash/recruitdash/internal/secrets"
	"github.com/recruitdash/recruitdash/internal/wizard"
)

// callbackTimeout bounds activity writes and hooks run from wizard
// callbacks that have no caller context.
const callbackTimeout = 30 * time.Second

// App owns the long-lived resources of one recruitdash process.
type App struct {
	cfg     *config.Config
	workDir string
	log     *logger.Logger

	ns        *natsserver.Server // nil in node mode
	nc        *natsgo.Conn
	js        jetstream.JetStream
	isPrimary bool

	backend  draftstore.Backend
	activity *activity.Log
	hooks    *hooks.Config

	client *ats.Client
	store  *wizard.Store
	ctrl   *wizard.Controller

	stopped bool
}

// Options configures Open.
type Options struct {
	// WorkDir is where the hooks file is looked up. Defaults to the
	// current directory.
	WorkDir string
}

// Open starts storage: the embedded NATS server (or a connection to one
// already running for the same data directory), the activity log and the
// draft backend chosen by cfg.Storage.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if opts.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		opts.WorkDir = wd
	}

	a := &App{cfg: cfg, workDir: opts.WorkDir, log: logger.Named("app")}

	if err := a.ensureNATS(); err != nil {
		return nil, fmt.Errorf("failed to ensure NATS: %w", err)
	}

	if err := a.openStorage(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	hookCfg, err := hooks.LoadConfig(a.workDir)
	if err != nil {
		a.log.Warn("hooks disabled: %v", err)
	}
	a.hooks = hookCfg

	return a, nil
}

// ensureNATS connects to a server already running for the data directory,
// or starts one and becomes its primary.
func (a *App) ensureNATS() error {
	dataDir := a.natsDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create NATS data directory: %w", err)
	}

	if nc := nats.TryConnectExisting(dataDir); nc != nil {
		a.log.Debug("connected to existing NATS server (node mode)")
		a.nc = nc
		return nil
	}

	a.log.Debug("starting NATS server (primary mode)")
	ns, port, err := nats.StartEmbeddedNATS(dataDir)
	if err != nil {
		return fmt.Errorf("failed to start NATS server: %w", err)
	}
	nc, err := nats.ConnectToPort(port)
	if err != nil {
		ns.Shutdown()
		nats.RemovePortFile(dataDir)
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	a.ns, a.nc, a.isPrimary = ns, nc, true
	return nil
}

func (a *App) openStorage(ctx context.Context) error {
	js, err := nats.CreateJetStream(a.nc)
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}
	a.js = js

	if a.activity, err = activity.Open(ctx, js); err != nil {
		return err
	}
	if a.backend, err = draftstore.Open(ctx, a.cfg, js); err != nil {
		return fmt.Errorf("failed to open %s draft storage: %w", a.cfg.Storage, err)
	}
	a.log.Debug("draft storage: %s", a.backend.Name())
	return nil
}

func (a *App) natsDir() string {
	return filepath.Join(a.cfg.DataDir, "nats")
}

// Config returns the loaded configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Backend returns the draft storage backend.
func (a *App) Backend() draftstore.Backend { return a.backend }

// Activity returns the activity log.
func (a *App) Activity() *activity.Log { return a.activity }

// IsPrimary reports whether this process owns the NATS server.
func (a *App) IsPrimary() bool { return a.isPrimary }

// Client returns the ATS client, creating it on first use. The API key
// comes from the environment or the OS keychain.
func (a *App) Client() (*ats.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	key, err := secrets.APIKey(a.cfg.Profile)
	if err != nil {
		return nil, err
	}
	client, err := ats.New(a.cfg.ATSURL,
		ats.WithAPIKey(key),
		ats.WithTimeout(a.cfg.ATSTimeout),
		ats.WithRateLimit(a.cfg.ATSRateLimit, a.cfg.ATSBurst),
	)
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}

// Wizard returns the controller for this profile's draft, restoring any
// saved session on first use. creator overrides the ATS client as the job
// creator when non-nil.
func (a *App) Wizard(ctx context.Context, creator wizard.JobCreator) (*wizard.Controller, error) {
	if a.ctrl != nil {
		return a.ctrl, nil
	}
	if creator == nil {
		client, err := a.Client()
		if err != nil {
			return nil, err
		}
		creator = client
	}

	a.store = wizard.NewStore(
		wizard.WithPersister(a.backend),
		wizard.WithDefaults(a.draftDefaults()),
	)
	resumed, err := a.store.Restore(ctx)
	if err != nil {
		a.log.Warn("starting a fresh draft: %v", err)
	}
	if resumed {
		snap := a.store.Snapshot()
		a.log.Info("resuming draft %q at step %s", snap.Draft.Title, snap.Step)
		a.record(ctx, activity.Event{Type: activity.DraftResumed, Title: snap.Draft.Title, Step: string(snap.Step)})
	}

	a.ctrl = wizard.NewController(a.store, wizard.NewSubmitter(creator),
		wizard.WithAfterSubmit(a.afterSubmit),
		wizard.WithOnDiscard(a.onDiscard),
		wizard.WithOnClose(func() { a.log.Debug("wizard session closed") }),
	)
	return a.ctrl, nil
}

func (a *App) afterSubmit(ctx context.Context, job wizard.Job, d wizard.Draft) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), callbackTimeout)
	defer cancel()

	title := job.Title
	if title == "" {
		title = d.Title
	}
	a.record(ctx, activity.Event{Type: activity.JobCreated, JobID: job.ID, Title: title})
	a.runHook(ctx, hooks.EventJobCreated, hooks.Variables{JobID: job.ID, Title: title, Profile: a.cfg.Profile})
}

func (a *App) onDiscard(d wizard.Draft) {
	ctx, cancel := context.WithTimeout(context.Background(), callbackTimeout)
	defer cancel()

	a.record(ctx, activity.Event{Type: activity.DraftDiscarded, Title: d.Title})
	a.runHook(ctx, hooks.EventDraftDiscarded, hooks.Variables{Title: d.Title, Profile: a.cfg.Profile})
}

// DiscardDraft deletes the saved draft outside a wizard session and
// reports whether there was one.
func (a *App) DiscardDraft(ctx context.Context) (bool, error) {
	data, err := a.backend.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load draft: %w", err)
	}
	if len(data) == 0 {
		return false, nil
	}
	var title string
	if snap, err := wizard.DecodeSnapshot(data, a.draftDefaults()); err == nil {
		if snap.IsInitial(a.draftDefaults()) {
			return false, nil
		}
		title = snap.Draft.Title
	}
	if err := a.backend.Delete(ctx); err != nil {
		return false, fmt.Errorf("failed to delete draft: %w", err)
	}
	a.record(ctx, activity.Event{Type: activity.DraftDiscarded, Title: title})
	a.runHook(ctx, hooks.EventDraftDiscarded, hooks.Variables{Title: title, Profile: a.cfg.Profile})
	return true, nil
}

func (a *App) draftDefaults() wizard.Defaults {
	return wizard.Defaults{Country: a.cfg.DefaultCountry, ApplicationForm: a.cfg.ApplicationForm}
}

func (a *App) record(ctx context.Context, ev activity.Event) {
	ev.Profile = a.cfg.Profile
	if err := a.activity.Record(ctx, ev); err != nil {
		a.log.Warn("failed to record %s: %v", ev.Type, err)
	}
}

func (a *App) runHook(ctx context.Context, event string, vars hooks.Variables) {
	hook := a.hooks.For(event)
	if hook == nil {
		return
	}
	res, err := hooks.Execute(ctx, hook, a.workDir, vars)
	switch {
	case err != nil:
		a.log.Warn("%s hook: %v", event, err)
	case res.TimedOut:
		a.log.Warn("%s hook timed out", event)
	case res.Failed:
		a.log.Warn("%s hook failed: %s", event, res.Output)
	default:
		a.log.Debug("%s hook output: %s", event, res.Output)
	}
}

// Close flushes the draft and shuts everything down in reverse order of
// startup. It is safe to call more than once.
func (a *App) Close() error {
	if a.stopped {
		return nil
	}
	a.stopped = true

	multiErr := &ierr.MultiError{}

	if a.store != nil {
		a.store.Close()
	}

	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			multiErr.Append(fmt.Errorf("closing draft storage: %w", err))
		}
	}

	if a.isPrimary {
		if err := nats.Shutdown(a.nc, a.ns); err != nil {
			multiErr.Append(fmt.Errorf("NATS shutdown failed: %w", err))
		}
		nats.RemovePortFile(a.natsDir())
	} else if a.nc != nil {
		a.nc.Close()
	}
	a.nc, a.ns = nil, nil

	return multiErr.ErrorOrNil()
}

// IsNoAPIKey reports whether err means no ATS key is configured.
func IsNoAPIKey(err error) bool {
	return errors.Is(err, secrets.ErrNoAPIKey)
}
