package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"tieintrack/internal/blob"
	"tieintrack/internal/config"
	"tieintrack/internal/core"
	"tieintrack/internal/logging"
	"tieintrack/internal/persistence"
	"tieintrack/internal/seed"
	"tieintrack/pkg/domain"
)

// selectionKey is the blob holding the CLI's remembered selection.
const selectionKey = "tieintrack/selection.json"

// openStorage builds the storage stack. Tests replace it to share one store
// across invocations.
var openStorage = persistence.Open

// app carries the per-invocation state shared by every command.
type app struct {
	out, errOut io.Writer

	configPath string
	verbose    bool
	jsonOut    bool
	projectID  string

	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	stack    *persistence.Stack
	svc      *core.Service
	now      func() time.Time
}

func newApp(out, errOut io.Writer) *app {
	return &app{out: out, errOut: errOut, now: time.Now}
}

// setup loads configuration, opens storage and the session service.
func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	a.registry = prometheus.NewRegistry()

	stack, err := openStorage(ctx, cfg, logger, a.registry)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	a.stack = stack

	opts := []core.Option{
		core.WithLogger(logger),
		core.WithSaver(stack.Saver),
		core.WithSeed(seed.Projects),
		core.WithNotifier(core.NotifierFunc(a.printNotification)),
	}
	if a.verbose {
		opts = append(opts, core.WithNotifier(core.LogNotifier{Logger: logger}))
	}
	a.svc = core.Open(ctx, stack.Gateway, opts...)
	stack.Saver.SetErrorHandler(a.svc.ReportSaveError)
	a.restoreSelection(ctx)
	return nil
}

// teardown remembers the selection, flushes pending saves and closes storage.
func (a *app) teardown(ctx context.Context) error {
	if a.stack == nil {
		return nil
	}
	var errs []error
	if err := a.saveSelection(ctx); err != nil {
		a.logger.Warn("save selection", zap.Error(err))
	}
	if err := a.stack.Close(ctx); err != nil {
		a.svc.ReportSaveError(err)
		errs = append(errs, err)
	}
	if a.verbose {
		a.logStoreMetrics()
	}
	_ = a.logger.Sync()
	a.stack = nil
	return errors.Join(errs...)
}

func (a *app) restoreSelection(ctx context.Context) {
	data, _, err := blob.ReadAll(ctx, a.stack.Blobs, selectionKey)
	if err != nil {
		if !errors.Is(err, blob.ErrNotExist) {
			a.logger.Debug("read selection", zap.Error(err))
		}
		return
	}
	var sel domain.Selection
	if err := json.Unmarshal(data, &sel); err != nil {
		a.logger.Debug("decode selection", zap.Error(err))
		return
	}
	a.svc.RestoreSelection(sel)
}

func (a *app) saveSelection(ctx context.Context) error {
	data, err := json.Marshal(a.svc.Selection())
	if err != nil {
		return err
	}
	_, err = blob.Replace(ctx, a.stack.Blobs, selectionKey, data, blob.PutOptions{ContentType: "application/json"})
	return err
}

func (a *app) printNotification(n core.Notification) {
	_, _ = fmt.Fprintf(a.errOut, "[%s] %s\n", n.Level, n.Message)
}

// logStoreMetrics writes the storage counters at debug level.
func (a *app) logStoreMetrics() {
	families, err := a.registry.Gather()
	if err != nil {
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fields := []zap.Field{zap.String("metric", mf.GetName())}
			for _, lp := range m.GetLabel() {
				fields = append(fields, zap.String(lp.GetName(), lp.GetValue()))
			}
			switch {
			case m.GetCounter() != nil:
				fields = append(fields, zap.Float64("value", m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				fields = append(fields, zap.Uint64("count", m.GetHistogram().GetSampleCount()),
					zap.Float64("sum_seconds", m.GetHistogram().GetSampleSum()))
			}
			a.logger.Debug("store metric", fields...)
		}
	}
}

// project resolves --project, falling back to the selected project.
func (a *app) project() (domain.Project, error) {
	if a.projectID != "" {
		return a.svc.Project(a.projectID)
	}
	p, ok := a.svc.SelectedProject()
	if !ok {
		return domain.Project{}, usageError{"no project selected; pass --project or run 'project select'"}
	}
	return p, nil
}

// chain resolves a chain id flag (0 meaning unset) against the selection.
func (a *app) chain(p domain.Project, chainID int) (domain.DaisyChain, error) {
	if chainID == 0 {
		sel := a.svc.Selection()
		if sel.ProjectID != p.ID || !sel.HasChain() {
			return domain.DaisyChain{}, usageError{"no chain selected; pass --chain or run 'chain select'"}
		}
		chainID = *sel.ChainID
	}
	c, ok := p.Chain(chainID)
	if !ok {
		return domain.DaisyChain{}, domain.ChainNotFound(p.ID, chainID)
	}
	return c, nil
}

func (a *app) rng(seedValue uint64) *rand.Rand {
	if seedValue == 0 {
		return nil
	}
	return rand.New(rand.NewPCG(seedValue, seedValue))
}

// emit writes v as indented JSON when --json is set, otherwise calls text.
func (a *app) emit(v any, text func(io.Writer)) error {
	if !a.jsonOut {
		text(a.out)
		return nil
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
