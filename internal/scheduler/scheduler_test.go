package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"InvestmentDashboard/internal/collector"
	"InvestmentDashboard/internal/recorder"
	"InvestmentDashboard/internal/watchlist"
)

type memRecorder struct {
	mu    sync.Mutex
	snaps []*recorder.Snapshot
}

func (m *memRecorder) RecordSnapshot(s *recorder.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps, s)
	return nil
}

func (m *memRecorder) Close() error { return nil }

type memSender struct {
	mu   sync.Mutex
	sent []string
}

func (m *memSender) SendWithRetry(_ context.Context, text string, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, text)
	return nil
}

func newTestScheduler(sender Sender, rec recorder.Recorder) (*Scheduler, *collector.MockFetcher) {
	m := &collector.MockFetcher{
		Price:      100,
		HistoryErr: map[string]error{"BAD": errors.New("no data returned")},
	}
	ctrl := watchlist.NewController(collector.NewCollector(m))
	s := NewScheduler(context.Background(), ctrl, sender, rec, "AAPL, BAD")
	s.now = func() time.Time { return time.Date(2024, 6, 3, 22, 0, 0, 0, time.UTC) }
	return s, m
}

func TestSnapshotTask(t *testing.T) {
	rec := &memRecorder{}
	sender := &memSender{}
	s, _ := newTestScheduler(sender, rec)

	s.RunSnapshotNow()

	if len(rec.snaps) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(rec.snaps))
	}
	if rec.snaps[0].Symbol != "AAPL" || rec.snaps[0].Status != "rendered" || rec.snaps[0].LastClose == nil {
		t.Errorf("unexpected AAPL snapshot %+v", rec.snaps[0])
	}
	if rec.snaps[1].Status != "failed" || !strings.Contains(rec.snaps[1].Error, "no data") {
		t.Errorf("unexpected BAD snapshot %+v", rec.snaps[1])
	}
	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0], "2024-06-03 22:00") {
		t.Errorf("expected one digest, got %v", sender.sent)
	}
}

func TestSnapshotTask_NoNotifier(t *testing.T) {
	rec := &memRecorder{}
	s, _ := newTestScheduler(nil, rec)
	s.RunSnapshotNow()
	if len(rec.snaps) != 2 {
		t.Errorf("expected snapshots without a notifier, got %d", len(rec.snaps))
	}
}

func TestRegister(t *testing.T) {
	s, _ := newTestScheduler(nil, nil)
	if err := s.Register("0 0 22 * * 1-5"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := s.Register("not a cron"); err == nil {
		t.Error("expected error for invalid expression")
	}
	if len(s.Cron.Entries()) != 1 {
		t.Errorf("expected 1 entry, got %d", len(s.Cron.Entries()))
	}
}

func TestHandleCommand(t *testing.T) {
	s, m := newTestScheduler(nil, nil)
	ctx := context.Background()

	reply := s.HandleCommand(ctx, "/watch msft, bad")
	if !strings.Contains(reply, "<b>MSFT</b>") || !strings.Contains(reply, "❌ <b>BAD</b>") {
		t.Errorf("unexpected /watch reply:\n%s", reply)
	}

	reply = s.HandleCommand(ctx, "/watch@dashboard_bot")
	if !strings.Contains(reply, "<b>AAPL</b>") {
		t.Errorf("bare /watch should use the default watchlist:\n%s", reply)
	}

	calls := len(m.Calls())
	for _, cmd := range []string{"/help", "/start", "hello", "", "/watch , ,"} {
		if reply := s.HandleCommand(ctx, cmd); !strings.Contains(reply, "Available commands") {
			t.Errorf("%q: expected usage, got %q", cmd, reply)
		}
	}
	if len(m.Calls()) != calls {
		t.Error("usage replies must not fetch data")
	}
}
