// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package lifecycle

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/jobmatch/internal/apperr"
	"github.com/tomtom215/jobmatch/internal/artifacts"
	"github.com/tomtom215/jobmatch/internal/events"
	"github.com/tomtom215/jobmatch/internal/logging"
	"github.com/tomtom215/jobmatch/internal/metrics"
	"github.com/tomtom215/jobmatch/internal/ml"
	"github.com/tomtom215/jobmatch/internal/modelcache"
	"github.com/tomtom215/jobmatch/internal/models"
	"github.com/tomtom215/jobmatch/internal/promotion"
	"github.com/tomtom215/jobmatch/internal/registry"
)

const (
	// FrameworkTag identifies runs produced by this service.
	FrameworkTag = "jobmatch-go"

	artifactName = "model.gob"
)

// Orchestrator trains, evaluates, registers and serves models.
type Orchestrator struct {
	registry registry.Client
	local    *artifacts.FileStore
	cache    modelcache.Cache
	events   events.Publisher
	policy   promotion.Policy
	logger   zerolog.Logger

	loads        singleflight.Group
	now          func() time.Time
	seed         func() int64
	termRetryGap time.Duration

	// gens counts serving changes per model type. A registry load that
	// started under an older generation never populates the cache.
	genMu sync.Mutex
	gens  map[models.ModelType]uint64
}

// Options configures an Orchestrator. Registry and Cache are required.
type Options struct {
	Registry registry.Client

	// Local keeps a durable copy of every artifact next to the service.
	// Optional; without it the registry is the only artifact source.
	Local *artifacts.FileStore

	Cache  modelcache.Cache
	Events events.Publisher
	Policy promotion.Policy
	Logger zerolog.Logger

	// Seed returns the seed of the next run. Defaults to a random seed.
	Seed func() int64

	// TerminateRetry is the wait before retrying a run termination the
	// registry rejected, normally the breaker timeout. Default: 30s
	TerminateRetry time.Duration
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(opts Options) *Orchestrator {
	o := &Orchestrator{
		registry: opts.Registry,
		local:    opts.Local,
		cache:    opts.Cache,
		events:   opts.Events,
		policy:   opts.Policy,
		logger:   opts.Logger.With().Str("component", "lifecycle").Logger(),
		now:      time.Now,
		seed:     opts.Seed,
		gens:     make(map[models.ModelType]uint64),

		termRetryGap: opts.TerminateRetry,
	}
	if o.termRetryGap <= 0 {
		o.termRetryGap = 30 * time.Second
	}
	if o.events == nil {
		o.events = events.Discard{}
	}
	if o.policy == (promotion.Policy{}) {
		o.policy = promotion.NewPolicy()
	}
	if o.seed == nil {
		o.seed = func() int64 { return rand.Int63n(1 << 31) } //nolint:gosec // run seeds are recorded, not secret
	}
	return o
}

// TrainAndEvaluate runs one training cycle for mt. It never returns an
// error: every failure becomes a Success=false result, and a run that was
// started is always terminated as FINISHED or FAILED.
func (o *Orchestrator) TrainAndEvaluate(ctx context.Context, mt models.ModelType, train TrainFunc) models.TrainingResult {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	start := o.now()
	log := o.log(ctx, mt)

	result := o.trainAndEvaluate(ctx, mt, train, log)
	result.ModelType = mt
	result.Duration = o.now().Sub(start)
	metrics.RecordTraining(string(mt), result.Success, result.Duration)

	ev := log.Info()
	if !result.Success {
		ev = log.Warn()
	}
	ev.Str("run_id", result.RunID).
		Bool("promoted", result.PromotedToProduction).
		Dur("duration", result.Duration).
		Msg(result.Message)
	return result
}

func (o *Orchestrator) trainAndEvaluate(ctx context.Context, mt models.ModelType, train TrainFunc, log zerolog.Logger) models.TrainingResult {
	def, err := Lookup(mt)
	if err != nil {
		return failed("", err)
	}

	expID, err := o.registry.GetOrCreateExperiment(ctx, def.Experiment)
	if err != nil {
		return failed("", fmt.Errorf("resolve experiment: %w", err))
	}

	current, currentMetrics, err := o.production(ctx, def)
	if err != nil {
		return failed("", fmt.Errorf("look up production version: %w", err))
	}

	seed := o.seed()
	tags := map[string]string{
		registry.TagSeed:      strconv.FormatInt(seed, 10),
		registry.TagFramework: FrameworkTag,
		registry.TagModelType: string(mt),
	}
	if current != nil {
		tags[registry.TagPreviousRunID] = current.RunID
		tags[registry.TagPreviousVersion] = current.Version
	}
	run, err := o.registry.CreateRun(ctx, expID, tags)
	if err != nil {
		return failed("", fmt.Errorf("create run: %w", err))
	}
	log = log.With().Str("run_id", run.RunID).Logger()

	res, err := o.executeRun(ctx, def, run.RunID, train, seed, current, currentMetrics, log)
	if err != nil {
		o.markFailed(ctx, run.RunID, err, log)
		return failed(run.RunID, err)
	}
	o.terminate(ctx, run.RunID, models.RunFinished, log)
	return res
}

func (o *Orchestrator) executeRun(
	ctx context.Context,
	def Definition,
	runID string,
	train TrainFunc,
	seed int64,
	current *models.ModelVersion,
	currentMetrics *models.ModelMetrics,
	log zerolog.Logger,
) (models.TrainingResult, error) {
	trained, err := fit(ctx, train, seed)
	if err != nil {
		return models.TrainingResult{}, fmt.Errorf("train: %w", err)
	}

	params := make(map[string]string, len(trained.Params)+1)
	for k, v := range trained.Params {
		params[k] = v
	}
	params["seed"] = strconv.FormatInt(seed, 10)
	if err := o.registry.LogParams(ctx, runID, params); err != nil {
		return models.TrainingResult{}, fmt.Errorf("log params: %w", err)
	}
	if err := o.registry.LogMetrics(ctx, runID, def.Task, trained.Metrics); err != nil {
		return models.TrainingResult{}, fmt.Errorf("log metrics: %w", err)
	}

	decision := def.Compare(o.policy, trained.Metrics, currentMetrics)
	if err := o.registry.LogParams(ctx, runID, map[string]string{
		registry.ParamComparisonResult: decision.Reason,
		registry.ParamIsBetter:         strconv.FormatBool(decision.IsBetter),
	}); err != nil {
		return models.TrainingResult{}, fmt.Errorf("log comparison: %w", err)
	}

	source, err := o.saveArtifact(ctx, runID, trained.Bundle, log)
	if err != nil {
		return models.TrainingResult{}, err
	}

	if err := o.registry.CreateRegisteredModel(ctx, def.RegisteredModel); err != nil {
		return models.TrainingResult{}, fmt.Errorf("register model: %w", err)
	}
	version, err := o.registry.CreateModelVersion(ctx, def.RegisteredModel, source, runID)
	if err != nil {
		return models.TrainingResult{}, fmt.Errorf("create model version: %w", err)
	}
	if err := o.registry.SetVersionTag(ctx, def.RegisteredModel, version.Version, registry.VersionTagComparison, decision.Reason); err != nil {
		log.Warn().Err(err).Str("version", version.Version).Msg("tag version")
	}

	res := models.TrainingResult{
		Success:          true,
		RunID:            runID,
		Version:          version.Version,
		Metrics:          trained.Metrics,
		ComparisonReason: decision.Reason,
	}

	if !decision.IsBetter {
		metrics.RecordPromotion(string(def.Type), "rejected")
		res.Message = "Model trained but not promoted: " + decision.Reason
		return res, nil
	}

	if current != nil {
		if err := o.registry.SetVersionTag(ctx, def.RegisteredModel, version.Version, registry.VersionTagReplaced, current.Version); err != nil {
			log.Warn().Err(err).Str("version", version.Version).Msg("tag replaced version")
		}
	}
	if _, err := o.registry.TransitionStage(ctx, def.RegisteredModel, version.Version, models.StageProduction, true); err != nil {
		return models.TrainingResult{}, fmt.Errorf("promote version %s: %w", version.Version, err)
	}
	o.evict(ctx, def.Type)
	o.events.Publish(ctx, events.NewEvent(events.EventPromoted, def.Type, version.Version))
	metrics.RecordPromotion(string(def.Type), "promoted")

	res.PromotedToProduction = true
	res.Message = fmt.Sprintf("Model version %s promoted to Production: %s", version.Version, decision.Reason)
	return res, nil
}

// fit runs train on a worker goroutine and waits for it. A panic in the
// estimator becomes an error.
func fit(ctx context.Context, train TrainFunc, seed int64) (*Trained, error) {
	var out *Trained
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("training panicked: %v", r)
			}
		}()
		out, err = train(gctx, seed)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if out == nil || out.Bundle == nil {
		return nil, ml.ErrEmptyTrainingSet
	}
	return out, nil
}

// saveArtifact keeps a local copy when configured and uploads to the
// registry. Either one succeeding is enough; the returned source is what
// the model version records.
func (o *Orchestrator) saveArtifact(ctx context.Context, runID string, bundle *ml.Bundle, log zerolog.Logger) (string, error) {
	data, err := bundle.Encode()
	if err != nil {
		return "", fmt.Errorf("encode model: %w", err)
	}

	var localPath string
	if o.local != nil {
		key := artifacts.ModelKey(runID)
		if _, err := o.local.Put(ctx, key, data); err != nil {
			log.Warn().Err(err).Msg("write local model copy")
		} else if localPath, err = o.local.Path(key); err == nil {
			if err := o.registry.LogParams(ctx, runID, map[string]string{registry.ParamLocalPath: localPath}); err != nil {
				return "", fmt.Errorf("log local path: %w", err)
			}
		}
	}

	uri, err := o.registry.UploadArtifact(ctx, runID, artifactName, data)
	if err != nil {
		if localPath == "" {
			return "", fmt.Errorf("upload model: %w", err)
		}
		log.Warn().Err(err).Str("local_path", localPath).Msg("artifact upload failed, keeping local copy")
		return "file://" + localPath, nil
	}
	if err := o.registry.LogParams(ctx, runID, map[string]string{registry.ParamArtifactURI: uri}); err != nil {
		log.Warn().Err(err).Msg("log artifact uri")
	}
	return uri, nil
}

func (o *Orchestrator) markFailed(ctx context.Context, runID string, cause error, log zerolog.Logger) {
	log.Error().Err(cause).Msg("training run failed")
	if err := o.registry.LogParams(context.WithoutCancel(ctx), runID, map[string]string{registry.ParamError: cause.Error()}); err != nil {
		log.Warn().Err(err).Msg("record run error")
	}
	o.terminate(ctx, runID, models.RunFailed, log)
}

// terminate closes runID with status. A rejected call is retried once after
// termRetryGap, by which time an open breaker admits a trial request. A run
// that still cannot be closed is logged at error level with its run_id so it
// can be reconciled by hand.
func (o *Orchestrator) terminate(ctx context.Context, runID string, status models.RunStatus, log zerolog.Logger) {
	tctx := context.WithoutCancel(ctx)
	err := o.registry.SetTerminated(tctx, runID, status)
	if err == nil {
		return
	}
	log.Warn().Err(err).Str("status", string(status)).Dur("retry_in", o.termRetryGap).Msg("terminate run rejected, retrying")

	timer := time.NewTimer(o.termRetryGap)
	defer timer.Stop()
	select {
	case <-timer.C:
		if err = o.registry.SetTerminated(tctx, runID, status); err == nil {
			return
		}
	case <-ctx.Done():
		err = fmt.Errorf("retry abandoned: %w", ctx.Err())
	}
	log.Error().Err(err).
		Str("status", string(status)).
		Str("registry_status", string(models.RunRunning)).
		Msg("run left unterminated in registry")
}

func failed(runID string, err error) models.TrainingResult {
	return models.TrainingResult{RunID: runID, Message: err.Error()}
}

// production returns the Production version of def and its run metrics,
// or nils when there is none.
func (o *Orchestrator) production(ctx context.Context, def Definition) (*models.ModelVersion, *models.ModelMetrics, error) {
	vs, err := o.registry.GetLatestVersions(ctx, def.RegisteredModel, models.StageProduction)
	if err != nil {
		return nil, nil, err
	}
	if len(vs) == 0 {
		return nil, nil, nil
	}
	v := vs[0]
	run, err := o.registry.GetRun(ctx, v.RunID)
	if err != nil {
		return nil, nil, err
	}
	m := registry.DecodeMetrics(run.Metrics)
	v.Metrics = m
	return &v, &m, nil
}

// LoadProductionModel returns the deployed model of mt, or nil when nothing
// is in Production yet. Concurrent misses share one registry round trip.
func (o *Orchestrator) LoadProductionModel(ctx context.Context, mt models.ModelType) (*modelcache.Entry, error) {
	def, err := Lookup(mt)
	if err != nil {
		return nil, err
	}
	if entry, ok := o.cache.Get(ctx, mt); ok {
		metrics.RecordCacheLookup(string(mt), "hit")
		return entry, nil
	}
	metrics.RecordCacheLookup(string(mt), "miss")

	v, err, _ := o.loads.Do(string(mt), func() (interface{}, error) {
		return o.loadFromRegistry(ctx, def)
	})
	if err != nil {
		return nil, err
	}
	entry, _ := v.(*modelcache.Entry)
	return entry, nil
}

func (o *Orchestrator) loadFromRegistry(ctx context.Context, def Definition) (*modelcache.Entry, error) {
	gen := o.generation(def.Type)
	vs, err := o.registry.GetLatestVersions(ctx, def.RegisteredModel, models.StageProduction)
	if err != nil {
		return nil, fmt.Errorf("look up production version: %w", err)
	}
	if len(vs) == 0 {
		return nil, nil
	}
	v := vs[0]

	run, err := o.registry.GetRun(ctx, v.RunID)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", v.RunID, err)
	}
	data, err := o.readArtifact(ctx, run)
	if err != nil {
		return nil, err
	}
	bundle, err := ml.DecodeBundle(data)
	if err != nil {
		return nil, fmt.Errorf("decode model version %s: %w", v.Version, err)
	}
	bundle.Version = v.Version

	log := o.log(ctx, def.Type).With().Str("version", v.Version).Logger()
	if o.generation(def.Type) != gen {
		log.Debug().Msg("production model changed during load, not caching")
		return &modelcache.Entry{Bundle: bundle, Version: v.Version}, nil
	}
	entry := o.cache.Set(ctx, def.Type, bundle, v.Version)
	if o.generation(def.Type) != gen {
		// A promotion landed between the check and Set.
		o.cache.Invalidate(ctx, def.Type)
	}
	log.Debug().Msg("loaded production model")
	return entry, nil
}

func (o *Orchestrator) generation(mt models.ModelType) uint64 {
	o.genMu.Lock()
	defer o.genMu.Unlock()
	return o.gens[mt]
}

// evict drops the cached model of mt and detaches in-flight loads from
// callers arriving later. The generation moves before the cache is
// touched so a load finishing concurrently sees it.
func (o *Orchestrator) evict(ctx context.Context, mt models.ModelType) {
	o.genMu.Lock()
	o.gens[mt]++
	o.genMu.Unlock()
	o.loads.Forget(string(mt))
	o.cache.Invalidate(ctx, mt)
}

// readArtifact prefers the local copy recorded on the run and falls back to
// the registry's artifact store.
func (o *Orchestrator) readArtifact(ctx context.Context, run *models.TrainingRun) ([]byte, error) {
	if p := run.Params[registry.ParamLocalPath]; p != "" && o.local != nil {
		data, err := o.local.ReadPath(p)
		if err == nil {
			return data, nil
		}
		o.logger.Debug().Err(err).Str("path", p).Msg("local model copy unreadable, downloading")
	}
	data, err := o.registry.DownloadArtifact(ctx, run.RunID, artifactName)
	if err != nil {
		return nil, fmt.Errorf("download model for run %s: %w", run.RunID, err)
	}
	return data, nil
}

// GetVersions returns every version of mt with its run metrics, newest first.
func (o *Orchestrator) GetVersions(ctx context.Context, mt models.ModelType) ([]models.ModelVersion, error) {
	def, err := Lookup(mt)
	if err != nil {
		return nil, err
	}
	vs, err := o.registry.SearchVersions(ctx, def.RegisteredModel)
	if err != nil {
		return nil, err
	}
	for i := range vs {
		run, err := o.registry.GetRun(ctx, vs[i].RunID)
		if err != nil {
			log := o.log(ctx, mt)
			log.Warn().Err(err).Str("version", vs[i].Version).Msg("load version metrics")
			continue
		}
		vs[i].Metrics = registry.DecodeMetrics(run.Metrics)
	}
	return vs, nil
}

// GetProduction returns the Production version of mt with its metrics.
func (o *Orchestrator) GetProduction(ctx context.Context, mt models.ModelType) (*models.ModelVersion, error) {
	def, err := Lookup(mt)
	if err != nil {
		return nil, err
	}
	v, _, err := o.production(ctx, def)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apperr.E(apperr.KindNotFound, "lifecycle.GetProduction", "no production version of %s", mt)
	}
	return v, nil
}

// Promote moves version of mt to Production by hand, archiving the
// version it replaces.
func (o *Orchestrator) Promote(ctx context.Context, mt models.ModelType, version string) (*models.ModelVersion, error) {
	def, err := Lookup(mt)
	if err != nil {
		return nil, err
	}
	target, err := o.findVersion(ctx, def, version)
	if err != nil {
		return nil, err
	}
	if target.Stage == models.StageProduction {
		return o.GetProduction(ctx, mt)
	}

	current, _, err := o.production(ctx, def)
	if err != nil {
		return nil, err
	}
	if current != nil {
		if err := o.registry.SetVersionTag(ctx, def.RegisteredModel, version, registry.VersionTagReplaced, current.Version); err != nil {
			return nil, err
		}
	}
	if err := o.registry.SetVersionTag(ctx, def.RegisteredModel, version, registry.VersionTagComparison, "manual promotion"); err != nil {
		return nil, err
	}
	if err := o.transition(ctx, def, version, events.EventPromoted); err != nil {
		return nil, err
	}
	metrics.RecordPromotion(string(mt), "manual")
	return o.GetProduction(ctx, mt)
}

// Rollback restores the version the current Production version replaced,
// or the newest archived version older than it.
func (o *Orchestrator) Rollback(ctx context.Context, mt models.ModelType) (*models.ModelVersion, error) {
	def, err := Lookup(mt)
	if err != nil {
		return nil, err
	}
	current, _, err := o.production(ctx, def)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperr.E(apperr.KindNotFound, "lifecycle.Rollback", "no production version of %s to roll back", mt)
	}

	vs, err := o.registry.SearchVersions(ctx, def.RegisteredModel)
	if err != nil {
		return nil, err
	}
	target := rollbackTarget(vs, current)
	if target == nil {
		return nil, apperr.E(apperr.KindNotFound, "lifecycle.Rollback", "%s version %s has no earlier version to restore", mt, current.Version)
	}

	if err := o.transition(ctx, def, target.Version, events.EventRolledBack); err != nil {
		return nil, err
	}
	metrics.RecordPromotion(string(mt), "rollback")
	log := o.log(ctx, mt)
	log.Info().
		Str("from_version", current.Version).
		Str("to_version", target.Version).
		Msg("rolled back production model")
	return o.GetProduction(ctx, mt)
}

func rollbackTarget(vs []models.ModelVersion, current *models.ModelVersion) *models.ModelVersion {
	if current.ReplacedVersion != "" {
		for i := range vs {
			if vs[i].Version == current.ReplacedVersion {
				return &vs[i]
			}
		}
	}
	cur, _ := strconv.Atoi(current.Version)
	// vs is newest first.
	for i := range vs {
		n, _ := strconv.Atoi(vs[i].Version)
		if vs[i].Stage == models.StageArchived && n < cur {
			return &vs[i]
		}
	}
	return nil
}

func (o *Orchestrator) transition(ctx context.Context, def Definition, version string, typ events.EventType) error {
	if _, err := o.registry.TransitionStage(ctx, def.RegisteredModel, version, models.StageProduction, true); err != nil {
		return err
	}
	o.evict(ctx, def.Type)
	o.events.Publish(ctx, events.NewEvent(typ, def.Type, version))
	return nil
}

func (o *Orchestrator) findVersion(ctx context.Context, def Definition, version string) (*models.ModelVersion, error) {
	vs, err := o.registry.SearchVersions(ctx, def.RegisteredModel)
	if err != nil {
		return nil, err
	}
	for i := range vs {
		if vs[i].Version == version {
			return &vs[i], nil
		}
	}
	return nil, apperr.E(apperr.KindNotFound, "lifecycle.findVersion", "%s has no version %q", def.Type, version)
}

// InvalidateCache drops the cached model of mt, or of every type when mt
// is empty.
func (o *Orchestrator) InvalidateCache(ctx context.Context, mt models.ModelType) error {
	if mt == "" {
		o.genMu.Lock()
		for _, t := range models.AllModelTypes() {
			o.gens[t]++
			o.loads.Forget(string(t))
		}
		o.genMu.Unlock()
		o.cache.InvalidateAll(ctx)
	} else {
		if _, err := Lookup(mt); err != nil {
			return err
		}
		o.evict(ctx, mt)
	}
	o.events.Publish(ctx, events.NewEvent(events.EventCacheInvalidated, mt, ""))
	return nil
}

// ListTypes describes every model type.
func (o *Orchestrator) ListTypes() []Definition {
	return Definitions()
}

func (o *Orchestrator) log(ctx context.Context, mt models.ModelType) zerolog.Logger {
	lc := o.logger.With().Str("model_type", string(mt))
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		lc = lc.Str("correlation_id", id)
	}
	return lc.Logger()
}
