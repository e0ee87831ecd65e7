package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/lelangtech/pricewatch-engine/pkg/models"
	"github.com/lelangtech/pricewatch-engine/pkg/repositories"
)

// SchedulerOptions configures the refresh scheduler.
type SchedulerOptions struct {
	// PollInterval is how often the schedule row is re-read for changes.
	PollInterval time.Duration
	// Location fixes the wall-clock timezone of the daily trigger.
	Location *time.Location
	// Workers bounds concurrent per-record external calls. Values below 1
	// fall back to strictly sequential processing.
	Workers int
}

// Scheduler owns the daily refresh timer. It re-reads the schedule row on a
// poll interval and swaps the installed timer when the configured
// time-of-day changes. At most one timer entry is active at any moment, and
// a fire that overlaps an in-flight batch is skipped.
type Scheduler struct {
	opts       SchedulerOptions
	schedule   ScheduleConfigService
	vehicles   repositories.VehicleRepository
	sources    repositories.DataSourceRepository
	params     repositories.DataParameterRepository
	estimator  PriceEstimator
	historical HistoricalPriceService
	runLogger  RunLoggerService
	logger     *zap.Logger

	cron      *cron.Cron
	mu        sync.Mutex // guards entryID, installed, hasEntry
	entryID   cron.EntryID
	installed models.TimeOfDay
	hasEntry  bool

	runMu   sync.Mutex // guards running
	running bool

	cancelPoll context.CancelFunc
	wg         sync.WaitGroup
}

func NewScheduler(
	opts SchedulerOptions,
	schedule ScheduleConfigService,
	vehicles repositories.VehicleRepository,
	sources repositories.DataSourceRepository,
	params repositories.DataParameterRepository,
	estimator PriceEstimator,
	historical HistoricalPriceService,
	runLogger RunLoggerService,
	logger *zap.Logger,
) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	return &Scheduler{
		opts:       opts,
		schedule:   schedule,
		vehicles:   vehicles,
		sources:    sources,
		params:     params,
		estimator:  estimator,
		historical: historical,
		runLogger:  runLogger,
		logger:     logger.Named("scheduler"),
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(opts.Location),
		),
	}
}

// Start installs the timer from the current schedule row and begins polling
// for changes. Fails when no schedule row exists.
func (s *Scheduler) Start(ctx context.Context) error {
	schedule, err := s.schedule.Current(ctx)
	if err != nil {
		return err
	}

	if err := s.installTimer(schedule.TimeOfDay(s.opts.Location)); err != nil {
		return err
	}

	s.cron.Start()

	pollCtx, cancel := context.WithCancel(context.Background())
	s.cancelPoll = cancel

	s.wg.Add(1)
	go s.pollLoop(pollCtx)

	s.logger.Info("Scheduler started",
		zap.String("fire_at", s.installed.String()),
		zap.String("timezone", s.opts.Location.String()),
		zap.Duration("poll_interval", s.opts.PollInterval),
		zap.Int("workers", s.opts.Workers))
	return nil
}

// Stop halts polling and waits for the timer (and any in-flight batch) to
// finish.
func (s *Scheduler) Stop() {
	if s.cancelPoll != nil {
		s.cancelPoll()
	}
	s.wg.Wait()
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) pollLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkSchedule(ctx)
		}
	}
}

// checkSchedule re-reads the schedule row and swaps the timer when the
// configured time-of-day changed. Config changes never interrupt an
// in-flight batch; they only affect future fires.
func (s *Scheduler) checkSchedule(ctx context.Context) {
	schedule, err := s.schedule.Current(ctx)
	if err != nil {
		s.logger.Warn("Schedule poll failed", zap.Error(err))
		return
	}

	next := schedule.TimeOfDay(s.opts.Location)

	s.mu.Lock()
	changed := !s.hasEntry || next != s.installed
	s.mu.Unlock()

	if !changed {
		return
	}

	previous := s.installed
	if err := s.installTimer(next); err != nil {
		s.logger.Error("Failed to reinstall timer", zap.Error(err))
		return
	}

	s.logger.Info("Schedule changed, timer replaced",
		zap.String("previous", previous.String()),
		zap.String("current", next.String()))
}

// installTimer atomically replaces the active cron entry so exactly one
// timer exists afterward.
func (s *Scheduler) installTimer(at models.TimeOfDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, err := s.cron.AddFunc(at.CronSpec(), s.onFire)
	if err != nil {
		return err
	}

	if s.hasEntry {
		s.cron.Remove(s.entryID)
	}
	s.entryID = entryID
	s.installed = at
	s.hasEntry = true
	return nil
}

// onFire runs one batch. A fire while the previous batch is still running
// is dropped rather than stacked.
func (s *Scheduler) onFire() {
	s.runMu.Lock()
	if s.running {
		s.runMu.Unlock()
		s.logger.Warn("Timer fired while a batch is still running, skipping")
		return
	}
	s.running = true
	s.runMu.Unlock()

	defer func() {
		s.runMu.Lock()
		s.running = false
		s.runMu.Unlock()
	}()

	ctx := context.Background()
	if err := s.runBatch(ctx); err != nil {
		// Batch failures stay inside the tick; the next fire retries
		// naturally.
		s.logger.Error("Scheduled batch failed", zap.Error(err))
	}
}

// runBatch executes one end-to-end refresh: select stale vehicles, estimate
// each, write price fields, then log the run. Records fail individually
// without aborting the batch.
func (s *Scheduler) runBatch(ctx context.Context) error {
	start := time.Now()

	schedule, err := s.schedule.Current(ctx)
	if err != nil {
		return err
	}

	batch, err := s.vehicles.SelectStaleBatch(ctx, schedule.MaxRecord)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		s.logger.Info("No stale vehicles, skipping run")
		return nil
	}

	active, err := s.sources.ListActive(ctx)
	if err != nil {
		return err
	}
	references := make([]string, 0, len(active))
	for _, src := range active {
		references = append(references, src.Address)
	}

	parameters, err := s.params.ListActive(ctx)
	if err != nil {
		return err
	}

	s.logger.Info("Batch run started",
		zap.Int("batch_size", len(batch)),
		zap.Int("max_record", schedule.MaxRecord))

	var (
		resultMu    sync.Mutex
		processed   int
		totalTokens int
	)

	jobs := make(chan *models.Vehicle)
	var workers sync.WaitGroup
	for i := 0; i < s.opts.Workers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for vehicle := range jobs {
				tokens, err := s.processVehicle(ctx, vehicle, references, parameters, schedule.AIIQR, schedule.AITemp)

				resultMu.Lock()
				totalTokens += tokens
				if err == nil {
					processed++
				}
				resultMu.Unlock()
			}
		}()
	}

	for _, vehicle := range batch {
		jobs <- vehicle
	}
	close(jobs)
	workers.Wait()

	duration := time.Since(start)
	s.logger.Info("Batch run finished",
		zap.Int("batch_size", len(batch)),
		zap.Int("processed", processed),
		zap.Int("total_tokens", totalTokens),
		zap.Duration("duration", duration))

	return s.runLogger.Record(ctx, models.RunTypeScheduled, processed, totalTokens, duration, nil)
}

// processVehicle estimates one vehicle and writes its price fields.
// Returns the tokens spent even when the record ultimately failed, so the
// run total reflects actual provider usage.
func (s *Scheduler) processVehicle(ctx context.Context, vehicle *models.Vehicle, references []string, parameters []*models.DataParameter, iqr, temperature float64) (int, error) {
	estimate, err := s.estimator.Estimate(ctx, vehicle, references, parameters, iqr, temperature)
	if err != nil {
		var parseErr *EstimateParseError
		if errors.As(err, &parseErr) {
			s.logger.Warn("Skipping vehicle, response unparseable",
				zap.String("id", vehicle.ID.String()),
				zap.String("name", vehicle.Name),
				zap.Int("tokens_used", parseErr.TokensUsed))
			// The provider charged for the unparseable response.
			return parseErr.TokensUsed, err
		}
		s.logger.Error("Skipping vehicle, estimation failed",
			zap.String("id", vehicle.ID.String()),
			zap.String("name", vehicle.Name),
			zap.Error(err))
		return 0, err
	}

	update := models.PriceUpdate{
		PriceLow:    estimate.Low,
		PriceHigh:   estimate.High,
		CheckedDate: time.Now(),
	}

	match, err := s.historical.FindBestMatch(ctx, vehicle.Name, strconv.Itoa(vehicle.Year), vehicle.City)
	if err != nil {
		s.logger.Warn("Historical lookup failed, continuing without comparison",
			zap.String("id", vehicle.ID.String()),
			zap.Error(err))
	} else if match != nil {
		update.HistoryPrice = &match.Price
		update.HistoryDate = &match.Date
	}

	if err := s.vehicles.UpdatePriceFields(ctx, vehicle.ID, update); err != nil {
		s.logger.Error("Failed to write price fields",
			zap.String("id", vehicle.ID.String()),
			zap.Error(err))
		return estimate.TokensUsed, err
	}

	return estimate.TokensUsed, nil
}

// FireAt reports the currently installed daily trigger time.
func (s *Scheduler) FireAt() models.TimeOfDay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.installed
}

// RunNow executes one batch outside the timer, honoring the same
// run-in-progress guard.
func (s *Scheduler) RunNow(ctx context.Context) error {
	s.runMu.Lock()
	if s.running {
		s.runMu.Unlock()
		return errors.New("a batch run is already in progress")
	}
	s.running = true
	s.runMu.Unlock()

	defer func() {
		s.runMu.Lock()
		s.running = false
		s.runMu.Unlock()
	}()

	return s.runBatch(ctx)
}
