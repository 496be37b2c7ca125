package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/sheet-countdown/internal/configstore"
	"github.com/pfrederiksen/sheet-countdown/internal/sheet"
	"github.com/pfrederiksen/sheet-countdown/internal/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// immediate runs scheduled steps synchronously so transitions settle at once.
type immediate struct{}

func (immediate) AfterFunc(d time.Duration, f func()) { f() }

func today() time.Time {
	return time.Date(2025, time.May, 20, 12, 0, 0, 0, time.Local)
}

type fixture struct {
	sheet      *httptest.Server
	widget     *httptest.Server
	controller *widget.Controller
	store      *configstore.MemoryStore
}

// newFixture serves body with status from a fake spreadsheet and wires a
// widget server in front of it.
func newFixture(t *testing.T, status int, body string) *fixture {
	t.Helper()

	sheetSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(sheetSrv.Close)

	fetcher := sheet.NewFetcher(sheetSrv.URL, time.Second)
	store := configstore.NewMemoryStore("")

	c, err := widget.New(widget.Options{
		Fetcher:   fetcher,
		Store:     store,
		EditURL:   "https://docs.example.com/edit",
		Now:       today,
		Scheduler: immediate{},
	})
	require.NoError(t, err)

	srv, err := New(Config{Controller: c, Fetcher: fetcher, Now: today})
	require.NoError(t, err)

	widgetSrv := httptest.NewServer(srv.Handler())
	t.Cleanup(widgetSrv.Close)

	return &fixture{sheet: sheetSrv, widget: widgetSrv, controller: c, store: store}
}

// noRedirect returns 3xx responses instead of following them.
var noRedirect = &http.Client{
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

func getDoc(t *testing.T, rawURL string) *goquery.Document {
	t.Helper()
	resp, err := http.Get(rawURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	return doc
}

func TestIndex_RendersCountdown(t *testing.T) {
	f := newFixture(t, http.StatusOK, "Title,Date\nLaunch,2025-06-01")
	f.controller.Refresh(context.Background())

	doc := getDoc(t, f.widget.URL+"/")

	assert.Equal(t, "Launch", doc.Find("#countdown-title").Text())
	assert.Equal(t, "12 Días", doc.Find("#countdown-days").Text())
	assert.Equal(t, "●", doc.Find("#toggle-button").Text())
	assert.Equal(t, "display", doc.Find("main").AttrOr("data-state", ""))
	assert.Equal(t, "panel", doc.Find("#display-view").AttrOr("class", ""))
	assert.Equal(t, "panel gone hidden", doc.Find("#config-view").AttrOr("class", ""))
	assert.Equal(t, "2", doc.Find("#row-selector").AttrOr("value", ""))
}

func TestIndex_FetchFailureShowsSentinel(t *testing.T) {
	f := newFixture(t, http.StatusNotFound, "")
	f.controller.Refresh(context.Background())

	doc := getDoc(t, f.widget.URL+"/")

	title := doc.Find("#countdown-title").Text()
	assert.Contains(t, title, "2", "error title names the requested row")
	assert.True(t, strings.HasPrefix(title, "ERROR"), "title = %q", title)

	days := strings.Fields(doc.Find("#countdown-days").Text())
	require.Len(t, days, 2)
	n, err := strconv.Atoi(days[0])
	require.NoError(t, err)
	assert.Greater(t, n, 365*70)
}

func TestIndex_ReadOnlyRowParam(t *testing.T) {
	f := newFixture(t, http.StatusOK, "Title,Date\nLaunch,2025-06-01\nBoda,2025-05-20")

	tests := []struct {
		query     string
		wantTitle string
	}{
		{"?row=3", "Boda"},
		{"?row=2", "Launch"},
		{"?row=abc", "Launch"},
		{"?row=0", "Launch"},
		{"?row=", "Launch"},
		{"?row=7", "ERROR: Fila 7 Desconocida"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			doc := getDoc(t, f.widget.URL+"/"+tt.query)
			assert.Equal(t, tt.wantTitle, doc.Find("#countdown-title").Text())
			assert.Equal(t, 0, doc.Find("#toggle-button").Length(), "read-only variant has no toggle")
			assert.Equal(t, 0, doc.Find("#config-view").Length())
		})
	}

	assert.Equal(t, configstore.DefaultRow, f.store.Get(), "query parameter must not touch the store")
}

func TestToggleAndSave(t *testing.T) {
	f := newFixture(t, http.StatusOK, "Title,Date\nLaunch,2025-06-01\nBoda,2025-05-20")
	f.controller.Refresh(context.Background())

	resp, err := noRedirect.PostForm(f.widget.URL+"/toggle", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	doc := getDoc(t, f.widget.URL+"/")
	assert.Equal(t, "configuration", doc.Find("main").AttrOr("data-state", ""))
	assert.Equal(t, "✕", doc.Find("#toggle-button").Text())
	assert.Equal(t, "panel", doc.Find("#config-view").AttrOr("class", ""))

	resp, err = noRedirect.PostForm(f.widget.URL+"/save", url.Values{"row": {"3"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, 3, f.store.Get())

	require.Eventually(t, func() bool {
		return f.controller.Snapshot().Title == "Boda"
	}, 2*time.Second, 10*time.Millisecond)

	doc = getDoc(t, f.widget.URL+"/")
	assert.Equal(t, "¡Hoy!", doc.Find("#countdown-days").Text())
	assert.Contains(t, doc.Find("#notice").Text(), "fila 3")

	// The confirmation is shown once.
	doc = getDoc(t, f.widget.URL+"/")
	assert.Equal(t, 0, doc.Find("#notice").Length())
}

func TestSave_Errors(t *testing.T) {
	f := newFixture(t, http.StatusOK, "Title,Date\nLaunch,2025-06-01")

	resp, err := noRedirect.PostForm(f.widget.URL+"/save", url.Values{"row": {"3"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "save outside the configuration view")

	require.NoError(t, f.controller.Toggle())

	for _, value := range []string{"", "dos", "0", "-3"} {
		resp, err := noRedirect.PostForm(f.widget.URL+"/save", url.Values{"row": {value}})
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "row=%q", value)
	}
	assert.Equal(t, configstore.DefaultRow, f.store.Get())
}

func TestSheetRedirect(t *testing.T) {
	f := newFixture(t, http.StatusOK, "Title,Date\nLaunch,2025-06-01")

	resp, err := noRedirect.Get(f.widget.URL + "/sheet")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "https://docs.example.com/edit", resp.Header.Get("Location"))
	assert.Equal(t, widget.StateDisplay, f.controller.Snapshot().State)
}

func TestAPIView(t *testing.T) {
	f := newFixture(t, http.StatusOK, "Title,Date\nLaunch,2025-06-01")
	f.controller.Refresh(context.Background())

	resp, err := http.Get(f.widget.URL + "/api/view")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Launch", body["title"])
	assert.Equal(t, "12 Días", body["label"])
	assert.Equal(t, "display", body["state"])
	assert.Equal(t, float64(12), body["days"])
}

func TestICS(t *testing.T) {
	f := newFixture(t, http.StatusOK, "Title,Date\nLaunch,2025-06-01")

	resp, err := http.Get(f.widget.URL + "/countdown.ics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, "nothing loaded yet")

	f.controller.Refresh(context.Background())

	resp, err = http.Get(f.widget.URL + "/countdown.ics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/calendar; charset=utf-8", resp.Header.Get("Content-Type"))

	buf := new(strings.Builder)
	_, err = io.Copy(buf, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "DTSTART;VALUE=DATE:20250601")
	assert.Contains(t, buf.String(), "SUMMARY:Launch")
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t, http.StatusOK, "Title,Date\nLaunch,2025-06-01")

	resp, err := http.Get(f.widget.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	resp, err = http.Get(f.widget.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	var snapshot map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snapshot))
	assert.Contains(t, snapshot, "counters")
	assert.Contains(t, snapshot, "timings")
}

func TestUnknownPath(t *testing.T) {
	f := newFixture(t, http.StatusOK, "Title,Date\nLaunch,2025-06-01")

	resp, err := http.Get(f.widget.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	f := newFixture(t, http.StatusOK, "Title,Date\nLaunch,2025-06-01")
	srv, err := New(Config{Addr: "127.0.0.1:0", Controller: f.controller, Fetcher: sheet.NewFetcher(f.sheet.URL, 0)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe did not return after cancel")
	}
}
