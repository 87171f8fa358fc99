package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/portalcipa/cipa-server/metrics"
	"github.com/portalcipa/cipa-server/models"
	"github.com/portalcipa/cipa-server/notify"
	"github.com/portalcipa/cipa-server/schedule"
	"github.com/portalcipa/cipa-server/spreadsheet"
	"github.com/portalcipa/cipa-server/testutil"
)

var errMailDown = errors.New("mailgun: 503 service unavailable")

// testNow falls inside both windows of openTimeline
var testNow = time.Date(2025, 3, 10, 10, 0, 0, 0, testutil.BRT)

var openTimeline = []schedule.Event{
	{ID: "ev-reg", Activity: "Inscrições", DateTime: "01/03/2025 - 20/03/2025"},
	{ID: "ev-vote", Activity: "Período de Votação", DateTime: "10/03/2025, 08:00 - 17:00"},
}

var closedTimeline = []schedule.Event{
	{ID: "ev-reg", Activity: "Inscrições", DateTime: "01/02/2025 - 10/02/2025"},
	{ID: "ev-vote", Activity: "Período de Votação", DateTime: "27/03/2025, 08:00 - 17:00"},
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

type fakePDF struct{}

func (fakePDF) PDF(_ context.Context, html []byte) ([]byte, error) {
	return append([]byte("%PDF-1.4\n"), html[:min(len(html), 16)]...), nil
}

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func testServices() Services {
	return Services{
		Metrics: metrics.New(),
		Clock:   testutil.FixedClock(testNow),
	}.WithDefaults()
}

// withTimeline stores default settings using the given events
func withTimeline(t *testing.T, conn *sql.DB, events []schedule.Event) models.AppSettings {
	t.Helper()
	s := models.DefaultSettings(testNow)
	s.CompanyName = "ACME Indústria"
	s.Mandate = "2025/2026"
	s.TimelineEvents = events
	testutil.SaveTestSettings(t, conn, s)
	return s
}

func xlsxFile(t *testing.T, headers []string, rows [][]interface{}) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := spreadsheet.WriteTable(&buf, "Plan1", headers, rows, nil); err != nil {
		t.Fatalf("Failed to build workbook: %v", err)
	}
	return buf.Bytes()
}

func uploadRequest(t *testing.T, path string, file []byte, fields map[string][]string, headers map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "colaboradores.xlsx")
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	part.Write(file)
	for k, values := range fields {
		for _, v := range values {
			mw.WriteField(k, v)
		}
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

// scrape returns the Prometheus text exposition of svc's registry
func scrape(t *testing.T, svc Services) string {
	t.Helper()
	w := httptest.NewRecorder()
	svc.Metrics.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Metrics endpoint returned %d", w.Code)
	}
	return w.Body.String()
}
