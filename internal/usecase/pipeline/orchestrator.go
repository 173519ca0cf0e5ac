package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/johnquangdev/interview-scheduler/internal/domain/entities"
	"github.com/johnquangdev/interview-scheduler/internal/domain/repositories"
	"github.com/johnquangdev/interview-scheduler/internal/infrastructure/cache"
	usecaseErrors "github.com/johnquangdev/interview-scheduler/internal/usecase/errors"
	"github.com/johnquangdev/interview-scheduler/internal/usecase/notification"
	"github.com/johnquangdev/interview-scheduler/internal/usecase/transcript"
	"github.com/johnquangdev/interview-scheduler/pkg/jobcontext"
	pkgvalidator "github.com/johnquangdev/interview-scheduler/pkg/validator"
)

// CallRequest asks the pipeline to finish one completed call.
// Name and email override what the call provider captured.
type CallRequest struct {
	CallID string `json:"call_id" validate:"required"`
	Name   string `json:"name"`
	Email  string `json:"email" validate:"omitempty,email"`
}

// Fetcher retrieves the transcript of a call
type Fetcher interface {
	Fetch(ctx context.Context, callID string) (*transcript.CallDetails, error)
}

// Extractor turns a transcript into meeting details
type Extractor interface {
	Extract(ctx context.Context, transcript, name, email, callID string) (*entities.ExtractedDetails, error)
	Fallback(name, email, callID, hhmm string) (*entities.ExtractedDetails, error)
}

// Scheduler creates the calendar event for the details
type Scheduler interface {
	ScheduleDetails(ctx context.Context, d *entities.ExtractedDetails) (string, error)
}

// Dispatcher delivers the invitation
type Dispatcher interface {
	Dispatch(ctx context.Context, n notification.Notification) entities.NotificationResult
}

// Archiver keeps the raw provider payload of a call
type Archiver interface {
	ArchiveCall(ctx context.Context, callID string, raw []byte) error
}

// Locker hands out named run locks
type Locker interface {
	Acquire(ctx context.Context, name string) (*cache.Lock, error)
}

// Options configures the orchestrator
type Options struct {
	FallbackTime     string
	RunTimeout       time.Duration
	BatchConcurrency int
}

// Deps are the collaborators of the orchestrator. Archiver and Metrics may be nil.
type Deps struct {
	Fetcher    Fetcher
	Extractor  Extractor
	Store      repositories.MeetingStore
	Scheduler  Scheduler
	Dispatcher Dispatcher
	Locker     Locker
	Archiver   Archiver
	Metrics    *Metrics
	Clock      clock.Clock
	Logger     *zap.Logger
}

// Orchestrator runs the post-call workflow: fetch, extract, persist, schedule, notify.
// Stages run strictly in order; a failure ends the run without undoing earlier effects.
type Orchestrator struct {
	deps      Deps
	opts      Options
	validator *pkgvalidator.CustomValidator
}

// NewOrchestrator creates an orchestrator
func NewOrchestrator(deps Deps, opts Options) *Orchestrator {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if opts.FallbackTime == "" {
		opts.FallbackTime = "10:00"
	}
	if opts.BatchConcurrency < 1 {
		opts.BatchConcurrency = 1
	}
	return &Orchestrator{deps: deps, opts: opts, validator: pkgvalidator.New()}
}

// run carries the state of one call through the stages
type run struct {
	out    *entities.Outcome
	logger *zap.Logger
}

func (r *run) fail(status entities.OutcomeStatus, err error) *entities.Outcome {
	r.out.Status = status
	r.out.Err = err
	return r.out
}

func (r *run) persistenceError(op string, err error) {
	r.out.PersistenceErrors = append(r.out.PersistenceErrors, fmt.Sprintf("%s: %v", op, err))
	r.logger.Error("persistence write failed", zap.String("op", op), zap.Error(err))
}

// Complete runs the whole workflow for one call and reports how it ended.
// It never panics on upstream failures; every failure is an outcome status.
func (o *Orchestrator) Complete(ctx context.Context, req CallRequest) *entities.Outcome {
	ctx, cancel := jobcontext.RunBegin(ctx, req.CallID, o.opts.RunTimeout)
	defer cancel()

	ctx, span := startSpan(ctx, traceSpanRun, attribute.String(traceAttrCallID, req.CallID))
	o.deps.Metrics.IncActiveRuns()

	r := &run{
		out: &entities.Outcome{
			CallID:    req.CallID,
			Stage:     entities.StageFetching,
			StartedAt: o.deps.Clock.Now(),
		},
		logger: o.deps.Logger.With(zap.String("call_id", req.CallID)),
	}
	if meta := jobcontext.GetRunMetadata(ctx); meta != nil {
		r.logger = r.logger.With(zap.String("run_id", meta.RunID.String()))
	}

	o.execute(ctx, req, r)

	out := r.out
	out.FinishedAt = o.deps.Clock.Now()
	o.deps.Metrics.DecActiveRuns()
	o.deps.Metrics.IncOutcome(string(out.Status), out.FallbackUsed)
	span.SetAttributes(
		attribute.String(traceAttrStatus, string(out.Status)),
		attribute.Bool(traceAttrFallback, out.FallbackUsed),
	)
	markSpanResult(span, out.Err)
	span.End()

	fields := []zap.Field{
		zap.String("status", string(out.Status)),
		zap.String("stage", string(out.Stage)),
		zap.Bool("fallback_used", out.FallbackUsed),
		zap.Duration("elapsed", out.FinishedAt.Sub(out.StartedAt)),
	}
	if out.Err != nil {
		fields = append(fields, zap.Error(out.Err))
	}
	if out.Status.Succeeded() {
		r.logger.Info("pipeline finished", fields...)
	} else {
		r.logger.Warn("pipeline finished", fields...)
	}
	return out
}

func (o *Orchestrator) execute(ctx context.Context, req CallRequest, r *run) *entities.Outcome {
	lock, err := o.deps.Locker.Acquire(ctx, "call:"+req.CallID)
	if err != nil {
		if errors.Is(err, cache.ErrLockHeld) {
			return r.fail(entities.OutcomeInProgress, fmt.Errorf("%w: %s", usecaseErrors.ErrRunInProgress, req.CallID))
		}
		return r.fail(entities.OutcomePersistenceFailed, fmt.Errorf("%w: call lock: %w", usecaseErrors.ErrPersistenceUnavailable, err))
	}
	defer o.release(ctx, lock, r.logger)

	// Fetching
	var call *transcript.CallDetails
	err = o.stage(ctx, r, entities.StageFetching, func(ctx context.Context) error {
		var err error
		call, err = o.deps.Fetcher.Fetch(ctx, req.CallID)
		return err
	})
	if err != nil {
		return r.fail(entities.OutcomeFetchFailed, err)
	}
	o.archive(ctx, call, r.logger)

	name, email := pick(req.Name, call.Name), entities.NormalizeEmail(pick(req.Email, call.Email))
	if name == "" || !o.validator.IsEmail(email) {
		return r.fail(entities.OutcomeInvalidContact, fmt.Errorf("%w: name=%q email=%q", usecaseErrors.ErrInvalidContact, name, email))
	}

	// a rerun of a booked call resumes from the stored meeting without asking the model again
	existing, err := o.deps.Store.FindMeetingByCallID(ctx, req.CallID)
	if err != nil {
		return r.fail(entities.OutcomePersistenceFailed, err)
	}

	var details *entities.ExtractedDetails
	if existing == nil {
		// Extracting
		err = o.stage(ctx, r, entities.StageExtracting, func(ctx context.Context) error {
			var err error
			details, err = o.deps.Extractor.Extract(ctx, call.Transcript, name, email, req.CallID)
			return err
		})
		if err != nil {
			if errors.Is(err, usecaseErrors.ErrInvalidContact) {
				return r.fail(entities.OutcomeInvalidContact, err)
			}
			r.out.FallbackUsed = true
			r.out.FallbackReason = err.Error()
			r.logger.Info("extraction failed, using fallback slot", zap.Error(err))

			details, err = o.deps.Extractor.Fallback(name, email, req.CallID, o.opts.FallbackTime)
			if err != nil {
				return r.fail(entities.OutcomeInvalidContact, err)
			}
		}
	}

	// Persisting
	r.out.Stage = entities.StagePersisting
	t := entities.NewCallTranscript(req.CallID, call.Transcript, call.Summary)
	t.Metadata["name"] = name
	t.Metadata["email"] = email
	t.Metadata["provider_status"] = call.Status
	if created, err := o.deps.Store.SaveTranscript(ctx, t); err != nil {
		r.persistenceError("save transcript", err)
	} else {
		r.out.TranscriptCreated = created
	}

	if existing == nil {
		existing, err = o.deps.Store.FindMeetingByKey(ctx, details.Key())
		if err != nil {
			return r.fail(entities.OutcomePersistenceFailed, err)
		}
	}

	if existing == nil {
		// Scheduling
		var status entities.OutcomeStatus
		existing, status, err = o.schedule(ctx, r, details)
		if err != nil {
			return r.fail(status, err)
		}
	} else {
		r.logger.Info("meeting already exists, skipping scheduling", zap.String("meeting_id", existing.ID.String()))
	}

	if existing != nil {
		r.out.Meeting = existing
		r.out.MeetingLink = existing.MeetingLink
		r.out.FallbackUsed = existing.FallbackUsed
		if !existing.FallbackUsed {
			r.out.FallbackReason = ""
		}
		if existing.IsNotified() {
			r.out.Stage = entities.StageDone
			r.out.Status = entities.OutcomeAlreadyCompleted
			return r.out
		}
	}

	// Notifying
	r.out.Stage = entities.StageNotifying
	started := o.deps.Clock.Now()
	result := o.deps.Dispatcher.Dispatch(ctx, invitation(req.CallID, r.out.MeetingLink, existing, details))
	r.out.Notification = &result
	if result.State != entities.NotificationSent {
		o.deps.Metrics.ObserveStage(string(entities.StageNotifying), "error", o.deps.Clock.Since(started))
		return r.fail(entities.OutcomeNotificationExhausted, result.Err)
	}
	o.deps.Metrics.ObserveStage(string(entities.StageNotifying), "ok", o.deps.Clock.Since(started))

	if r.out.Meeting != nil {
		if err := o.deps.Store.MarkNotified(context.WithoutCancel(ctx), r.out.Meeting.ID, o.deps.Clock.Now()); err != nil {
			r.persistenceError("mark notified", err)
		}
	}

	r.out.Stage = entities.StageDone
	r.out.Status = entities.OutcomeCompleted
	if r.out.FallbackUsed {
		r.out.Status = entities.OutcomeCompletedFallback
	}
	return r.out
}

// invitation describes the booked meeting. The stored record wins over this run's
// extraction; details are only used when the record could not be written.
func invitation(callID, link string, record *entities.MeetingRecord, details *entities.ExtractedDetails) notification.Notification {
	n := notification.Notification{CallID: callID, MeetingLink: link}
	if record != nil {
		n.Name, n.Email, n.StartsAt = record.Name, record.Email, record.LocalStartsAt()
		return n
	}
	n.Name, n.Email, n.StartsAt = details.Name, details.Email, details.StartsAt
	return n
}

// schedule creates the event and the meeting record while holding the natural-key lock.
// A nil record with a nil error means the record could not be written; the run continues.
func (o *Orchestrator) schedule(ctx context.Context, r *run, details *entities.ExtractedDetails) (*entities.MeetingRecord, entities.OutcomeStatus, error) {
	r.out.Stage = entities.StageScheduling

	keyLock, err := o.deps.Locker.Acquire(ctx, "meeting:"+details.Key().String())
	if err != nil {
		if errors.Is(err, cache.ErrLockHeld) {
			return nil, entities.OutcomeInProgress, fmt.Errorf("%w: meeting %s", usecaseErrors.ErrRunInProgress, details.Key())
		}
		return nil, entities.OutcomePersistenceFailed, fmt.Errorf("%w: meeting lock: %w", usecaseErrors.ErrPersistenceUnavailable, err)
	}
	defer o.release(ctx, keyLock, r.logger)

	// another call may have booked the same slot while we waited
	existing, err := o.deps.Store.FindMeetingByKey(ctx, details.Key())
	if err != nil {
		return nil, entities.OutcomePersistenceFailed, err
	}
	if existing != nil {
		return existing, "", nil
	}

	var link string
	err = o.stage(ctx, r, entities.StageScheduling, func(ctx context.Context) error {
		var err error
		link, err = o.deps.Scheduler.ScheduleDetails(ctx, details)
		return err
	})
	if err != nil {
		return nil, entities.OutcomeSchedulingFailed, err
	}
	r.out.MeetingLink = link

	record, created, err := o.deps.Store.SaveMeeting(context.WithoutCancel(ctx), *details, link, r.out.FallbackUsed)
	if err != nil {
		r.persistenceError("save meeting", err)
		return nil, "", nil
	}
	r.out.MeetingCreated = created
	if !created {
		r.logger.Warn("meeting saved concurrently, using stored link",
			zap.String("meeting_id", record.ID.String()),
			zap.String("discarded_link", link),
		)
	}
	return record, "", nil
}

// stage runs fn as one traced, timed pipeline stage
func (o *Orchestrator) stage(ctx context.Context, r *run, stage entities.Stage, fn func(context.Context) error) error {
	r.out.Stage = stage
	ctx, span := startSpan(ctx, traceSpanStage, attribute.String(traceAttrStage, string(stage)))
	defer span.End()

	started := o.deps.Clock.Now()
	err := fn(ctx)
	status := "ok"
	if err != nil {
		status = "error"
	}
	o.deps.Metrics.ObserveStage(string(stage), status, o.deps.Clock.Since(started))
	markSpanResult(span, err)
	return err
}

func (o *Orchestrator) archive(ctx context.Context, call *transcript.CallDetails, logger *zap.Logger) {
	if o.deps.Archiver == nil || len(call.Raw) == 0 {
		return
	}
	if err := o.deps.Archiver.ArchiveCall(ctx, call.CallID, call.Raw); err != nil {
		logger.Warn("failed to archive raw call payload", zap.Error(err))
	}
}

func (o *Orchestrator) release(ctx context.Context, lock *cache.Lock, logger *zap.Logger) {
	if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
		logger.Warn("failed to release lock", zap.Error(err))
	}
}

// CompleteBatch runs the workflow for each request and returns outcomes in submission order.
// With a concurrency above one, distinct calls run in parallel; repeats of a call id
// still run one after another.
func (o *Orchestrator) CompleteBatch(ctx context.Context, reqs []CallRequest) []*entities.Outcome {
	outcomes := make([]*entities.Outcome, len(reqs))

	if o.opts.BatchConcurrency == 1 {
		for i, req := range reqs {
			outcomes[i] = o.Complete(ctx, req)
		}
		return outcomes
	}

	order := make([]string, 0, len(reqs))
	groups := make(map[string][]int, len(reqs))
	for i, req := range reqs {
		id := strings.TrimSpace(req.CallID)
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], i)
	}

	var g errgroup.Group
	g.SetLimit(o.opts.BatchConcurrency)
	for _, id := range order {
		indices := groups[id]
		g.Go(func() error {
			for _, i := range indices {
				outcomes[i] = o.Complete(ctx, reqs[i])
			}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func pick(preferred, fallback string) string {
	if s := strings.TrimSpace(preferred); s != "" {
		return s
	}
	return strings.TrimSpace(fallback)
}
