package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"InvestmentDashboard/internal/model"
)

func TestFormatDigest(t *testing.T) {
	at := time.Date(2024, 6, 3, 22, 0, 0, 0, time.UTC)
	results := []model.TickerResult{
		{
			Symbol: "AAPL",
			Stage:  model.StageRendered,
			Report: &model.TickerReport{
				Series:    &model.PriceSeries{Bars: []model.OHLCV{{Close: 198}}},
				SMA50:     []float64{185},
				SMA200:    []float64{170},
				UpperBand: []float64{200},
				LowerBand: []float64{140},
				Trend:     model.Trend{Slope: 0.05, Intercept: 120},
				CAGR:      0.41421,
				High52w:   199,
				Low52w:    164,
			},
		},
		{Symbol: "B<D", Stage: model.StageFailed, Err: errors.New("no data returned")},
	}

	msg := FormatDigest(results, at)
	for _, want := range []string{
		"2024-06-03 22:00",
		"<b>AAPL</b> 198.00",
		"SMA50 185.00 | SMA200 170.00",
		"Bands 140.00 - 200.00",
		"Trend y = 0.05x + 120.00 | CAGR 41.42%",
		"52w 164.00 - 199.00",
		"near 52w high",
		"❌ <b>B&lt;D</b>: no data returned",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("digest missing %q\n%s", want, msg)
		}
	}
}

func TestFormatDigest_Empty(t *testing.T) {
	if msg := FormatDigest(nil, time.Now()); !strings.Contains(msg, "No tickers") {
		t.Errorf("unexpected empty digest %q", msg)
	}
}

func TestSplitMessage(t *testing.T) {
	text := strings.Repeat("0123456789\n", 10) // 110 bytes
	parts := splitMessage(text, 25)
	if strings.Join(parts, "") != text {
		t.Fatal("split lost content")
	}
	for _, p := range parts {
		if len(p) > 25 {
			t.Errorf("part exceeds limit: %d", len(p))
		}
	}
	if got := splitMessage("short", 25); len(got) != 1 || got[0] != "short" {
		t.Errorf("unexpected split of short text: %v", got)
	}
	emoji := strings.Repeat("📈", 10) // 4 bytes each
	parts = splitMessage(emoji, 10)
	if strings.Join(parts, "") != emoji {
		t.Fatal("rune split lost content")
	}
	for _, p := range parts {
		if len(p) > 10 || !utf8.ValidString(p) {
			t.Errorf("part %q splits a rune or exceeds limit", p)
		}
	}
	long := strings.Repeat("x", 60)
	if parts := splitMessage(long, 25); len(parts) != 3 || strings.Join(parts, "") != long {
		t.Errorf("unexpected hard split: %v", parts)
	}
}

type fakeBot struct {
	mu       sync.Mutex
	sent     []string
	failures int32
	updates  []string
	served   bool
}

func (f *fakeBot) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/bot123:abc/sendMessage":
			if atomic.AddInt32(&f.failures, -1) >= 0 {
				w.WriteHeader(http.StatusBadGateway)
				fmt.Fprint(w, `{"ok":false,"description":"Bad Gateway"}`)
				return
			}
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode body: %v", err)
			}
			if body["chat_id"] != "42" || body["parse_mode"] != "HTML" {
				t.Errorf("unexpected payload %v", body)
			}
			f.mu.Lock()
			f.sent = append(f.sent, body["text"])
			f.mu.Unlock()
			fmt.Fprint(w, `{"ok":true}`)
		case "/bot123:abc/getUpdates":
			f.mu.Lock()
			first := !f.served
			f.served = true
			f.mu.Unlock()
			if !first {
				time.Sleep(20 * time.Millisecond)
				fmt.Fprint(w, `{"ok":true,"result":[]}`)
				return
			}
			var items []string
			for i, text := range f.updates {
				items = append(items, fmt.Sprintf(`{"update_id":%d,"message":{"text":%q}}`, 100+i, text))
			}
			items = append(items, `{"update_id":200}`)
			fmt.Fprintf(w, `{"ok":true,"result":[%s]}`, strings.Join(items, ","))
		default:
			http.NotFound(w, r)
		}
	}
}

func (f *fakeBot) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func newFakeNotifier(t *testing.T, bot *fakeBot) *TelegramNotifier {
	srv := httptest.NewServer(bot.handler(t))
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("123:abc", "42", "", srv.URL)
	n.RetryBase = time.Millisecond
	return n
}

func TestSend(t *testing.T) {
	bot := &fakeBot{}
	n := newFakeNotifier(t, bot)
	if err := n.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := bot.messages(); len(got) != 1 || got[0] != "hello" {
		t.Errorf("unexpected messages %v", got)
	}
}

func TestSendWithRetry(t *testing.T) {
	bot := &fakeBot{failures: 2}
	n := newFakeNotifier(t, bot)
	if err := n.SendWithRetry(context.Background(), "digest", 3); err != nil {
		t.Fatalf("expected success after retries: %v", err)
	}
	if got := bot.messages(); len(got) != 1 {
		t.Errorf("expected one delivered message, got %v", got)
	}

	bot = &fakeBot{failures: 10}
	n = newFakeNotifier(t, bot)
	err := n.SendWithRetry(context.Background(), "digest", 1)
	if err == nil || !strings.Contains(err.Error(), "Bad Gateway") {
		t.Errorf("expected exhausted retries, got %v", err)
	}
}

func TestStartPolling(t *testing.T) {
	bot := &fakeBot{updates: []string{"/watch aapl", "  /help  "}}
	n := newFakeNotifier(t, bot)

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	var got []string
	done := make(chan struct{})
	go func() {
		n.StartPolling(ctx, func(_ context.Context, cmd string) string {
			mu.Lock()
			got = append(got, cmd)
			mu.Unlock()
			return "reply to " + cmd
		})
		close(done)
	}()

	deadline := time.After(5 * time.Second)
	for len(bot.messages()) < 2 {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("timed out, replies so far: %v", bot.messages())
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || got[0] != "/watch aapl" || got[1] != "/help" {
		t.Errorf("unexpected commands %v", got)
	}
	if msgs := bot.messages(); msgs[0] != "reply to /watch aapl" {
		t.Errorf("unexpected reply %q", msgs[0])
	}
}
