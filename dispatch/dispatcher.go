// Package dispatch routes skill invocations to live integration
// instances. It owns the instance registry, enforces the
// connect-then-invoke sequencing, validates arguments against the
// capability schema and submits one audit entry per call.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ryan12324/OpenAssistant-sub003/audit"
	"github.com/ryan12324/OpenAssistant-sub003/capability"
	"github.com/ryan12324/OpenAssistant-sub003/integration"
	"github.com/ryan12324/OpenAssistant-sub003/settings"
)

const defaultConnectTimeout = 30 * time.Second

// Builder constructs an integration instance from resolved configuration.
type Builder func(cfg map[string]any) integration.Instance

// Caller identifies who triggered a dispatch, for the audit trail.
type Caller struct {
	UserID string
	Source string
}

type Options struct {
	Registry       *capability.Registry
	Settings       settings.Resolver
	Builders       map[string]Builder
	Recorder       *audit.AsyncRecorder
	Logger         *slog.Logger
	ConnectTimeout time.Duration
}

// Dispatcher is safe for concurrent use. Instances are cached per
// (integration id, config fingerprint); a fingerprint rotation supersedes
// the old instance, which is disconnected so its session is not leaked.
type Dispatcher struct {
	registry       *capability.Registry
	settings       settings.Resolver
	builders       map[string]Builder
	recorder       *audit.AsyncRecorder
	logger         *slog.Logger
	connectTimeout time.Duration

	mu        sync.Mutex
	instances map[string]*liveInstance
}

type liveInstance struct {
	fingerprint string
	inst        integration.Instance

	// connectMu serializes connect/disconnect per instance; concurrent
	// ExecuteSkill calls are unrestricted once connected.
	connectMu sync.Mutex
}

func New(opts Options) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	return &Dispatcher{
		registry:       opts.Registry,
		settings:       opts.Settings,
		builders:       opts.Builders,
		recorder:       opts.Recorder,
		logger:         logger,
		connectTimeout: timeout,
		instances:      make(map[string]*liveInstance),
	}
}

// Execute routes one skill invocation. Every failure mode comes back as a
// structured result; nothing on this path panics or returns a Go error.
// Each call submits exactly one audit entry, best-effort.
func (d *Dispatcher) Execute(ctx context.Context, integrationID, skillID string, args map[string]any, caller Caller) integration.Result {
	start := time.Now()
	res := d.execute(ctx, integrationID, skillID, args)
	d.submitAudit(caller, d.auditAction(integrationID, skillID), skillID, args, res, time.Since(start))
	return res
}

// ExecuteSkill dispatches by skill id alone. Skill ids are globally
// unique, so the owning integration is resolved through the registry.
func (d *Dispatcher) ExecuteSkill(ctx context.Context, skillID string, args map[string]any, caller Caller) integration.Result {
	if schema, ok := d.registry.OwnerOfSkill(skillID); ok {
		return d.Execute(ctx, schema.ID, skillID, args, caller)
	}
	start := time.Now()
	res := integration.Failf("Unknown skill: %s", skillID)
	d.submitAudit(caller, audit.ActionSkillExecute, skillID, args, res, time.Since(start))
	return res
}

// auditAction resolves the action recorded for one call: the skill's
// declared override when it names a known action, skill_execute otherwise.
func (d *Dispatcher) auditAction(integrationID, skillID string) audit.Action {
	if schema, ok := d.registry.Get(integrationID); ok {
		if sk, ok := schema.SkillByID(skillID); ok && sk.AuditAction != "" {
			if a := audit.Action(sk.AuditAction); a.Valid() {
				return a
			}
		}
	}
	return audit.ActionSkillExecute
}

func (d *Dispatcher) execute(ctx context.Context, integrationID, skillID string, args map[string]any) integration.Result {
	schema, ok := d.registry.Get(integrationID)
	if !ok {
		return integration.Failf("Unknown integration: %s", integrationID)
	}
	skill, ok := schema.SkillByID(skillID)
	if !ok {
		return integration.Failf("Unknown skill: %s", skillID)
	}
	for _, name := range skill.RequiredParams() {
		if _, ok := args[name]; !ok {
			return integration.Failf("Missing required parameter: %s", name)
		}
	}

	live, res := d.instance(schema)
	if live == nil {
		return res
	}
	if err := d.ensureConnected(ctx, live); err != nil {
		var cerr *integration.ConnectError
		if errors.As(err, &cerr) {
			return integration.Failf("Connection failed: %s", cerr.Reason)
		}
		return integration.Failf("Connection failed: %v", err)
	}

	return live.inst.ExecuteSkill(ctx, skillID, args)
}

// Connect eagerly connects one integration, raising the underlying error.
// Used by fail-fast setup paths; Execute itself never raises.
func (d *Dispatcher) Connect(ctx context.Context, integrationID string) error {
	schema, ok := d.registry.Get(integrationID)
	if !ok {
		return errors.New("unknown integration: " + integrationID)
	}
	live, res := d.instance(schema)
	if live == nil {
		return errors.New(res.Output)
	}
	return d.ensureConnected(ctx, live)
}

// Status reports the connection state of an integration's cached
// instance, or disconnected when none has been constructed yet.
func (d *Dispatcher) Status(integrationID string) integration.Status {
	d.mu.Lock()
	live, ok := d.instances[integrationID]
	d.mu.Unlock()
	if !ok {
		return integration.StatusDisconnected
	}
	return live.inst.Status()
}

// DisconnectAll releases every cached instance. Used at shutdown.
func (d *Dispatcher) DisconnectAll(ctx context.Context) {
	d.mu.Lock()
	all := make([]*liveInstance, 0, len(d.instances))
	for _, live := range d.instances {
		all = append(all, live)
	}
	d.instances = make(map[string]*liveInstance)
	d.mu.Unlock()

	for _, live := range all {
		live.connectMu.Lock()
		live.inst.Disconnect(ctx)
		live.connectMu.Unlock()
	}
}

// instance resolves or lazily constructs the live instance for a schema,
// invalidating the cache when the effective configuration changed.
func (d *Dispatcher) instance(schema *capability.Schema) (*liveInstance, integration.Result) {
	build, ok := d.builders[schema.ID]
	if !ok {
		return nil, integration.Failf("No builder registered for integration: %s", schema.ID)
	}

	cfg := d.settings.IntegrationConfig(schema)
	if missing := settings.MissingRequired(schema, cfg); len(missing) > 0 {
		return nil, integration.Failf("Integration %s is not configured: missing %v", schema.ID, missing)
	}
	fp := fingerprint(cfg)

	d.mu.Lock()
	live, ok := d.instances[schema.ID]
	if ok && live.fingerprint == fp {
		d.mu.Unlock()
		return live, integration.Result{}
	}
	superseded := live
	live = &liveInstance{fingerprint: fp, inst: build(cfg)}
	d.instances[schema.ID] = live
	d.mu.Unlock()

	if superseded != nil {
		d.logger.Info("instance_superseded", "integration", schema.ID)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), d.connectTimeout)
			defer cancel()
			superseded.connectMu.Lock()
			superseded.inst.Disconnect(ctx)
			superseded.connectMu.Unlock()
		}()
	}
	return live, integration.Result{}
}

func (d *Dispatcher) ensureConnected(ctx context.Context, live *liveInstance) error {
	live.connectMu.Lock()
	defer live.connectMu.Unlock()

	if live.inst.Status() == integration.StatusConnected {
		return nil
	}
	connectCtx, cancel := context.WithTimeout(ctx, d.connectTimeout)
	defer cancel()

	id := live.inst.Schema().ID
	if err := live.inst.Connect(connectCtx); err != nil {
		d.logger.Warn("instance_connect_failed", "integration", id, "error", err.Error())
		return err
	}
	d.logger.Info("instance_connected", "integration", id)
	return nil
}

func (d *Dispatcher) submitAudit(caller Caller, action audit.Action, skillID string, args map[string]any, res integration.Result, elapsed time.Duration) {
	if d.recorder == nil {
		return
	}
	input := ""
	if len(args) > 0 {
		if b, err := json.Marshal(args); err == nil {
			input = string(b)
		}
	}
	d.recorder.Submit(audit.Entry{
		ID:         uuid.NewString(),
		UserID:     caller.UserID,
		Action:     action,
		SkillID:    skillID,
		Input:      input,
		Output:     res.Output,
		Source:     caller.Source,
		DurationMs: elapsed.Milliseconds(),
		Success:    res.Success,
		CreatedAt:  time.Now().UTC(),
	})
}
