package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/msto63/bayan/foundation/bayan"
	"github.com/msto63/bayan/foundation/bayan/parser"
	"github.com/msto63/bayan/foundation/bayan/runtime"
	mdwerror "github.com/msto63/bayan/foundation/core/error"
	mdwlog "github.com/msto63/bayan/foundation/core/log"
	"github.com/msto63/bayan/internal/store"
	"github.com/msto63/bayan/pkg/core/cache"
	"github.com/msto63/bayan/pkg/core/config"
)

// RunRequest asks for one program run in a fresh session
type RunRequest struct {
	Name   string `json:"name,omitempty"`
	Source string `json:"source"`
	// Restore loads a fact snapshot before the run. SnapshotID selects
	// one; the latest is used when it is empty.
	Restore    bool   `json:"restore,omitempty"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	// Save stores the ground facts after a successful run
	Save bool `json:"save,omitempty"`
}

// RunResponse carries the outcome of a run. Program failures are
// reported in Error; the transport only fails for infrastructure errors.
type RunResponse struct {
	RunID      string        `json:"run_id"`
	Output     string        `json:"output"`
	Value      string        `json:"value,omitempty"`
	DurationMS int64         `json:"duration_ms"`
	Facts      int           `json:"facts"`
	Snapshot   string        `json:"snapshot,omitempty"`
	Error      *RunError     `json:"error,omitempty"`
	Errors     []*Diagnostic `json:"errors,omitempty"`
}

// RunError describes why a program failed
type RunError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// Diagnostic is one positioned syntax error
type Diagnostic = RunError

// Runner executes requests, each in its own engine. Compiled modules
// are shared through one cache.
type Runner struct {
	engine  config.EngineConfig
	store   store.FactStore
	modules *cache.Cache
	logger  *mdwlog.Logger
}

// NewRunner creates a runner. facts may be nil when snapshots are not
// offered.
func NewRunner(cfg config.EngineConfig, facts store.FactStore, logger *mdwlog.Logger) *Runner {
	if logger == nil {
		logger = mdwlog.GetDefault()
	}
	ttl := cfg.ModuleCacheTTL.Duration
	if ttl <= 0 {
		ttl = bayan.DefaultModuleCacheTTL
	}
	return &Runner{
		engine:  cfg,
		store:   facts,
		modules: cache.New(cache.Config{MaxItems: 256, TTL: ttl}),
		logger:  logger.WithField("component", "runner"),
	}
}

// Run executes req within the configured run timeout
func (r *Runner) Run(ctx context.Context, req *RunRequest) (*RunResponse, error) {
	if strings.TrimSpace(req.Source) == "" {
		return nil, mdwerror.New("source is required").WithCode(mdwerror.CodeInvalidInput)
	}
	if (req.Restore || req.SnapshotID != "" || req.Save) && r.store == nil {
		return nil, mdwerror.New("fact snapshots are not enabled").WithCode(mdwerror.CodeServiceUnavailable)
	}
	name := req.Name
	if name == "" {
		name = "request"
	}

	e, err := bayan.New(bayan.Options{
		Logger:          r.logger,
		ModulePaths:     r.engine.ModulePaths,
		ModuleCache:     r.modules,
		MaxSourceLength: r.engine.MaxSourceLength,
		MaxCallDepth:    r.engine.MaxCallDepth,
	})
	if err != nil {
		return nil, err
	}

	if req.Restore || req.SnapshotID != "" {
		if _, err := r.store.Restore(ctx, req.SnapshotID, e.Database()); err != nil {
			return nil, err
		}
	}

	if timeout := r.engine.RunTimeout.Duration; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, runErr := e.Run(ctx, name, req.Source)
	resp := &RunResponse{Facts: e.Database().Len()}
	if res != nil {
		resp.RunID = res.RunID
		resp.Output = res.Output
		resp.DurationMS = res.Duration.Milliseconds()
	}
	if runErr != nil {
		if !isProgramError(runErr) {
			return nil, runErr
		}
		resp.Error, resp.Errors = describeError(runErr)
		return resp, nil
	}
	resp.Value = runtime.Inspect(res.Value)

	if req.Save {
		// the request context may be close to its deadline after a long run
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		snap, err := r.store.Save(saveCtx, res.RunID, name, e.Database())
		if err != nil {
			return nil, err
		}
		resp.Snapshot = snap.ID
	}
	return resp, nil
}

// isProgramError separates failures of the submitted program from
// failures of the service
func isProgramError(err error) bool {
	code := mdwerror.GetCode(err)
	switch code.Category() {
	case "source", "execution":
		return true
	}
	return code == mdwerror.CodeTimeout || code == mdwerror.CodeInvalidInput
}

func describeError(err error) (*RunError, []*Diagnostic) {
	first := &RunError{Code: mdwerror.GetCode(err).String(), Message: err.Error()}
	if line, column, ok := mdwerror.GetPosition(err); ok {
		first.Line, first.Column = line, column
	}

	var list parser.ErrorList
	if !errors.As(err, &list) {
		return first, nil
	}
	diags := make([]*Diagnostic, len(list))
	for i, e := range list {
		line, column, _ := e.Position()
		diags[i] = &Diagnostic{Code: e.Code().String(), Message: e.Message(), Line: line, Column: column}
	}
	return first, diags
}
