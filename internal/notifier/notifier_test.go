package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InsiderWatch/internal/model"
)

func holyGrailReport() model.TickerReport {
	d := model.EventHolyGrail.Display()
	return model.TickerReport{
		Ticker: "AT&T",
		AsOf:   model.NewDate(2024, time.March, 20),
		Events: []model.EventSummary{
			{Type: model.EventHolyGrail, Count: 2, Dates: []model.Date{model.NewDate(2024, time.March, 4), model.NewDate(2024, time.March, 7)}},
			{Type: model.EventRestock, Count: 1, Dates: []model.Date{model.NewDate(2024, time.February, 1)}},
		},
		Primary: &model.PrimaryEvent{Type: model.EventHolyGrail, Label: d.Label, Icon: d.Icon, ColorClass: d.ColorClass, Tooltip: d.Tooltip},
	}
}

func TestFormatAlert(t *testing.T) {
	msg := FormatAlert(holyGrailReport(), model.EventClamp)

	assert.Contains(t, msg, "<b>AT&amp;T</b> | Breakout Accumulation")
	assert.Contains(t, msg, "was: Cluster Pending")
	assert.Contains(t, msg, "Breakout Accumulation ×2: 2024-03-04, 2024-03-07")
	assert.Contains(t, msg, "Slow Burn ×1: 2024-02-01")
	assert.True(t, strings.HasSuffix(msg, "as of 2024-03-20"))

	assert.NotContains(t, FormatAlert(holyGrailReport(), ""), "was:")
	assert.Empty(t, FormatAlert(model.TickerReport{Ticker: "X"}, ""))
}

func TestFormatReport(t *testing.T) {
	assert.Contains(t, FormatReport(holyGrailReport()), "Primary: 🚀 Breakout Accumulation")
	assert.Contains(t, FormatReport(model.TickerReport{Ticker: "X"}), "No insider purchase events.")
	assert.Contains(t, FormatReport(model.TickerReport{Ticker: "X", Error: "timeout <10s>"}), "data unavailable: timeout &lt;10s&gt;")
}

func TestFormatLatest(t *testing.T) {
	reports := []model.TickerReport{
		holyGrailReport(),
		{Ticker: "FLAT"},
		{Ticker: "BAD", Error: "boom"},
	}
	msg := FormatLatest(reports, time.Date(2024, time.March, 20, 22, 30, 0, 0, time.UTC))
	assert.Contains(t, msg, "2024-03-20 22:30")
	assert.Contains(t, msg, "<b>AT&amp;T</b> Breakout Accumulation")
	assert.NotContains(t, msg, "FLAT")
	assert.Contains(t, msg, "1 ticker(s) unavailable")

	assert.Contains(t, FormatLatest(nil, time.Time{}), "No primary events.")
}

type flakyNotifier struct {
	failures int
	calls    int
	sent     []string
}

func (f *flakyNotifier) Send(_ context.Context, text string) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("temporary")
	}
	f.sent = append(f.sent, text)
	return nil
}

func TestSendWithRetry(t *testing.T) {
	retryInterval = time.Millisecond
	t.Cleanup(func() { retryInterval = time.Second })

	ok := &flakyNotifier{failures: 2}
	require.NoError(t, SendWithRetry(context.Background(), ok, "hi", 3))
	assert.Equal(t, 3, ok.calls)
	assert.Equal(t, []string{"hi"}, ok.sent)

	bad := &flakyNotifier{failures: 10}
	err := SendWithRetry(context.Background(), bad, "hi", 2)
	require.Error(t, err)
	assert.Equal(t, 3, bad.calls)
}

func TestTelegramNotifier_Send(t *testing.T) {
	var (
		mu   sync.Mutex
		form map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"watch","username":"watch_bot"}}`)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			mu.Lock()
			form = map[string]string{
				"chat_id":    r.PostForm.Get("chat_id"),
				"text":       r.PostForm.Get("text"),
				"parse_mode": r.PostForm.Get("parse_mode"),
			}
			mu.Unlock()
			fmt.Fprint(w, `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	n, err := newTelegramNotifier("token", 42, "", srv.URL+"/bot%s/%s")
	require.NoError(t, err)
	require.NoError(t, n.Send(context.Background(), "<b>hello</b>"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "42", form["chat_id"])
	assert.Equal(t, "<b>hello</b>", form["text"])
	assert.Equal(t, "HTML", form["parse_mode"])
}
