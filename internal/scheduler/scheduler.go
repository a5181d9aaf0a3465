package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"InvestmentDashboard/internal/model"
	"InvestmentDashboard/internal/notifier"
	"InvestmentDashboard/internal/recorder"
	"InvestmentDashboard/internal/watchlist"
)

// Runner processes a parsed watchlist. *watchlist.Controller satisfies it.
type Runner interface {
	Run(ctx context.Context, symbols []string) []model.TickerResult
}

// Sender delivers digest messages. *notifier.TelegramNotifier satisfies it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the snapshot job on a cron schedule and answers bot commands.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   Runner
	Notifier Sender // nil disables digests
	Recorder recorder.Recorder
	Tickers  string // watchlist used by the job and by a bare /watch
	Ctx      context.Context

	now func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner Runner, sender Sender, rec recorder.Recorder, tickers string) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		Runner:   runner,
		Notifier: sender,
		Recorder: rec,
		Tickers:  tickers,
		Ctx:      ctx,
		now:      time.Now,
	}
}

// Register adds the snapshot job. The expression has a leading seconds field.
func (s *Scheduler) Register(expr string) error {
	if _, err := s.Cron.AddFunc(expr, s.snapshotTask); err != nil {
		return fmt.Errorf("register snapshot task: %w", err)
	}
	log.Info().Str("cron", expr).Str("tickers", s.Tickers).Msg("snapshot task registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunSnapshotNow executes the snapshot job immediately.
func (s *Scheduler) RunSnapshotNow() {
	s.snapshotTask()
}

func (s *Scheduler) snapshotTask() {
	symbols := watchlist.Parse(s.Tickers)
	log.Info().Strs("symbols", symbols).Msg("running snapshot task")
	at := s.now()
	results := s.Runner.Run(s.Ctx, symbols)

	var failed int
	for _, r := range results {
		if !r.OK() {
			failed++
		}
		if err := s.Recorder.RecordSnapshot(recorder.NewSnapshot(r, at)); err != nil {
			log.Error().Err(err).Str("symbol", r.Symbol).Msg("record snapshot")
		}
	}
	log.Info().Int("tickers", len(results)).Int("failed", failed).Msg("snapshot task finished")

	s.trySend(notifier.FormatDigest(results, at))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	command = strings.TrimSpace(command)
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatUsage()
	}
	// Group chats address commands as /watch@botname.
	name, _, _ := strings.Cut(fields[0], "@")

	switch strings.ToLower(name) {
	case "/watch":
		input := strings.TrimSpace(strings.TrimPrefix(command, fields[0]))
		if input == "" {
			input = s.Tickers
		}
		symbols := watchlist.Parse(input)
		if len(symbols) == 0 {
			return notifier.FormatUsage()
		}
		return notifier.FormatDigest(s.Runner.Run(ctx, symbols), s.now())
	default:
		return notifier.FormatUsage()
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
