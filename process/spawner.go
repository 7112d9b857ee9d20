package process

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/subprocess/component"
	"github.com/kbukum/subprocess/errors"
	"github.com/kbukum/subprocess/logger"
	"github.com/kbukum/subprocess/observability"
	"github.com/kbukum/subprocess/resilience"
)

var (
	_ component.Component   = (*Spawner)(nil)
	_ component.Describable = (*Spawner)(nil)
)

// Spawner launches children and tracks them until they are reaped.
// It is safe for concurrent use.
type Spawner struct {
	cfg      Config
	registry *Registry
	log      *logger.Logger
	metrics  *observability.SpawnMetrics
	bulkhead *resilience.Bulkhead
	started  atomic.Bool
}

// Option configures a Spawner.
type Option func(*Spawner)

// WithRegistry tracks children in r instead of DefaultRegistry.
func WithRegistry(r *Registry) Option {
	return func(s *Spawner) { s.registry = r }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Spawner) { s.log = l }
}

// WithMetrics records spawn metrics on m.
func WithMetrics(m *observability.SpawnMetrics) Option {
	return func(s *Spawner) { s.metrics = m }
}

// NewSpawner creates a Spawner. Zero config values take their defaults.
func NewSpawner(cfg Config, opts ...Option) *Spawner {
	cfg.ApplyDefaults()
	s := &Spawner{
		cfg:      cfg,
		registry: DefaultRegistry,
		bulkhead: resilience.NewBulkhead(cfg.Launch),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get(s.cfg.Name)
	} else {
		s.log = s.log.WithComponent(s.cfg.Name)
	}
	return s
}

// Config returns the effective configuration.
func (s *Spawner) Config() Config {
	return s.cfg
}

// Registry returns the registry children are tracked in.
func (s *Spawner) Registry() *Registry {
	return s.registry
}

// ForkExec marshals loosely typed arguments, spawns the child and returns
// its pid. Contract violations and unknown input shapes are returned as
// errors with InvalidPID; a launch failure also returns InvalidPID and an
// error for which errors.IsLaunchFailure holds.
func (s *Spawner) ForkExec(ctx context.Context, args ForkExecArgs) (int64, error) {
	req, err := Marshal(args, s.cfg.MaxFD)
	if err != nil {
		s.metrics.RecordSpawn(ctx, observability.OutcomeInvalid, 0)
		return InvalidPID, err
	}
	h, err := s.Spawn(ctx, req)
	if err != nil {
		return InvalidPID, err
	}
	return h.PID, nil
}

// Spawn launches the child described by req and registers it. The context
// is consulted before the launch and between retries only; a launch in
// progress is never interrupted.
func (s *Spawner) Spawn(ctx context.Context, req *Request) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := req.Validate(s.cfg.MaxFD); err != nil {
		s.metrics.RecordSpawn(ctx, observability.OutcomeInvalid, 0)
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanLaunch, trace.WithAttributes(
		attribute.String(observability.AttrExecutable, req.Args[0]),
		attribute.Int(observability.AttrArgc, len(req.Args)),
	))
	defer span.End()
	log := s.log.WithContext(ctx)
	start := time.Now()

	if err := s.runPreExec(log, req); err != nil {
		if errors.IsLaunchFailure(err) {
			s.launchFailed(ctx, log, req, start, err)
		} else {
			s.metrics.RecordSpawn(ctx, observability.OutcomeInvalid, 0)
			observability.RecordSpanError(ctx, err)
		}
		return nil, err
	}

	var executable string
	proc, err := resilience.ExecuteWithResult(s.bulkhead, ctx, func() (*os.Process, error) {
		return resilience.Retry(ctx, s.retryConfig(log), func() (*os.Process, error) {
			proc, path, err := launch(req, s.cfg.EnvMode)
			executable = path
			return proc, err
		})
	})
	if err != nil {
		if stderrors.Is(err, resilience.ErrBulkheadFull) || stderrors.Is(err, resilience.ErrBulkheadTimeout) {
			err = errors.ResourceExhausted(req.Args[0], err)
		}
		if errors.IsLaunchFailure(err) {
			s.launchFailed(ctx, log, req, start, err)
		}
		return nil, err
	}

	h := newHandle(proc, slices.Clone(req.Args), s.onExit)
	s.registry.Register(h)

	elapsed := time.Since(start)
	s.metrics.RecordSpawn(ctx, observability.OutcomeOK, elapsed)
	span.SetAttributes(
		attribute.Int64(observability.AttrPID, h.PID),
		attribute.String(observability.AttrSpawnID, h.ID.String()),
		attribute.String(observability.AttrOutcome, observability.OutcomeOK),
	)
	if h.PID == InvalidPID {
		log.Warn("child started but its pid is unknown", logger.Fields(
			logger.FieldSpawnID, h.ID.String(),
			logger.FieldExecutable, executable,
		))
	}
	log.WithFields(logger.DurationFields("launch", elapsed)).Debug("child started", logger.Fields(
		logger.FieldPID, h.PID,
		logger.FieldSpawnID, h.ID.String(),
		logger.FieldExecutable, executable,
	))
	return h, nil
}

func (s *Spawner) runPreExec(log *logger.Logger, req *Request) error {
	if req.PreExec == nil {
		return nil
	}
	switch s.cfg.PreExecPolicy {
	case PreExecReject:
		return errors.NotImplemented("preexec_fn")
	case PreExecParent:
		if err := req.PreExec(); err != nil {
			return errors.LaunchFailed(req.Args[0], &preExecError{err: err})
		}
	default:
		log.Warn("pre-exec hook skipped", logger.Fields(logger.FieldExecutable, req.Args[0]))
	}
	return nil
}

func (s *Spawner) retryConfig(log *logger.Logger) resilience.RetryConfig {
	cfg := s.cfg.Retry
	cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
		log.Warn("transient launch failure, retrying", logger.MergeWithError(logger.Fields(
			"attempt", attempt,
			"backoff", backoff.String(),
		), err))
	}
	return cfg
}

// launchFailed reports a failure to the error pipe, the metrics and the log.
func (s *Spawner) launchFailed(ctx context.Context, log *logger.Logger, req *Request, start time.Time, err error) {
	if req.ErrpipeWrite >= 0 {
		if werr := reportErrpipe(req.ErrpipeWrite, errpipeReport(err)); werr != nil {
			log.Warn("could not write error pipe", logger.ErrorFields("errpipe_write", werr))
		}
	}
	s.metrics.RecordSpawn(ctx, observability.OutcomeLaunchFailed, time.Since(start))
	observability.RecordSpanError(ctx, err)
	log.WithError(err).Error("launch failed", logger.Fields(logger.FieldExecutable, req.Args[0]))
}

func (s *Spawner) onExit(status *ExitStatus) {
	s.metrics.RecordExit(context.Background(), status.Code)
	s.log.Debug("child reaped", logger.Fields(
		logger.FieldPID, status.PID,
		logger.FieldExitCode, status.Code,
	))
}

// Lookup returns the handle of a live child.
func (s *Spawner) Lookup(pid int64) (*Handle, bool) {
	return s.registry.Lookup(pid)
}

// Wait blocks until the child exits, then removes it from the registry.
// If ctx ends first the child stays registered and a TIMEOUT error is
// returned.
func (s *Spawner) Wait(ctx context.Context, pid int64) (*ExitStatus, error) {
	h, ok := s.registry.Lookup(pid)
	if !ok {
		return nil, errors.NotFound("process", strconv.FormatInt(pid, 10))
	}
	return s.wait(ctx, h)
}

func (s *Spawner) wait(ctx context.Context, h *Handle) (*ExitStatus, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanWait, trace.WithAttributes(
		attribute.Int64(observability.AttrPID, h.PID),
		attribute.String(observability.AttrSpawnID, h.ID.String()),
	))
	defer span.End()

	go h.Wait() //nolint:errcheck // result is read below through Done
	select {
	case <-h.Done():
	case <-ctx.Done():
		err := errors.Timeout("wait").WithCause(ctx.Err())
		observability.RecordSpanError(ctx, err)
		return nil, err
	}
	status, err := h.Wait()
	s.registry.remove(h)
	if err != nil {
		observability.RecordSpanError(ctx, err)
		return nil, fmt.Errorf("process: wait %d: %w", h.PID, err)
	}
	span.SetAttributes(attribute.Int(observability.AttrExitCode, status.Code))
	return status, nil
}

// Signal sends sig to a live child.
func (s *Spawner) Signal(pid int64, sig os.Signal) error {
	h, ok := s.registry.Lookup(pid)
	if !ok {
		return errors.NotFound("process", strconv.FormatInt(pid, 10))
	}
	return h.Signal(sig)
}

// Kill sends SIGKILL to a live child.
func (s *Spawner) Kill(pid int64) error {
	return s.Signal(pid, os.Kill)
}

// Name returns the configured spawner name.
func (s *Spawner) Name() string {
	return s.cfg.Name
}

// Start validates the configuration.
func (s *Spawner) Start(ctx context.Context) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	s.started.Store(true)
	s.log.Info("spawner started", logger.Fields(
		"env_mode", s.cfg.EnvMode,
		"preexec_policy", s.cfg.PreExecPolicy,
	))
	return nil
}

// Stop terminates every tracked child, kills those still alive after the
// grace period or when ctx ends, and reaps them all.
func (s *Spawner) Stop(ctx context.Context) error {
	handles := append(s.registry.Snapshot(), s.registry.Unidentified()...)
	for _, h := range handles {
		go h.Wait() //nolint:errcheck // reaped below
		_ = terminate(h.proc)
	}

	deadline := time.NewTimer(s.cfg.GracePeriod)
	defer deadline.Stop()

	var errs []error
	expired := false
	for _, h := range handles {
		if !expired {
			select {
			case <-h.Done():
				continue
			case <-deadline.C:
				expired = true
			case <-ctx.Done():
				expired = true
			}
		}
		if err := h.proc.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
			errs = append(errs, fmt.Errorf("kill %d: %w", h.PID, err))
		}
		<-h.Done()
	}
	for _, h := range handles {
		s.registry.remove(h)
	}

	s.started.Store(false)
	s.log.Info("spawner stopped", logger.Fields("reaped", len(handles)))
	return stderrors.Join(errs...)
}

// Health reports the number of live children.
func (s *Spawner) Health(ctx context.Context) component.Health {
	live := s.registry.Len()
	unidentified := len(s.registry.Unidentified())
	h := component.Health{
		Name:    s.cfg.Name,
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d live children", live),
		Details: map[string]string{
			"live":         strconv.Itoa(live),
			"unidentified": strconv.Itoa(unidentified),
		},
	}
	if !s.started.Load() {
		h.Status = component.StatusDegraded
		h.Message = "not started"
	}
	return h
}

// Describe summarizes the configuration.
func (s *Spawner) Describe() component.Description {
	return component.Description{
		Name: s.cfg.Name,
		Type: "spawner",
		Details: fmt.Sprintf("env=%s preexec=%s live=%d",
			s.cfg.EnvMode, s.cfg.PreExecPolicy, s.registry.Len()),
	}
}
