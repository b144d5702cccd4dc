package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"topicquiz/api/analysis"
	"topicquiz/api/database"
	"topicquiz/api/models"
	"topicquiz/api/store"
	"topicquiz/api/topics"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type fakeEvents struct {
	inserted  []models.ResponseEvent
	insertErr error
	counts    []store.ResponseCountByTime
	avg       float64
	success   []models.TopicSuccessResult
	gotLimit  uint64
	gotTopic  string
}

func (f *fakeEvents) InsertResponseEvents(_ context.Context, events []models.ResponseEvent) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, events...)
	return nil
}

func (f *fakeEvents) GetResponseCountsOverTime(_ context.Context, _ string, _, _ time.Time, topic string) ([]store.ResponseCountByTime, error) {
	f.gotTopic = topic
	return f.counts, nil
}

func (f *fakeEvents) GetAverageTimeSpent(_ context.Context, topic string, _, _ time.Time) (float64, error) {
	f.gotTopic = topic
	return f.avg, nil
}

func (f *fakeEvents) GetTopicSuccess(_ context.Context, _, _ time.Time, limit uint64) ([]models.TopicSuccessResult, error) {
	f.gotLimit = limit
	return f.success, nil
}

// countingRepo counts history fetches and can fail them.
type countingRepo struct {
	SessionRepository
	fetches  int
	fetchErr error
}

func (r *countingRepo) FetchSessionsWithResponses(ctx context.Context) ([]models.Session, error) {
	r.fetches++
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	return r.SessionRepository.FetchSessionsWithResponses(ctx)
}

type testServer struct {
	router *gin.Engine
	repo   *countingRepo
	events *fakeEvents
}

func testUniverse() *topics.Universe {
	return topics.MustUniverse(
		topics.Topic{Name: "Pensamento computacional", DomainRelevant: true},
		topics.Topic{Name: "Marketing Digital"},
		topics.Topic{Name: "Robótica na educação", DomainRelevant: true},
	)
}

func newTestServer(t *testing.T, withEvents bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(database.DialectSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(db.Close)
	if err := db.CreateSchema(); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	repo := &countingRepo{SessionRepository: store.NewSessionStore(db)}
	cache, err := analysis.NewCache(4)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}

	ts := &testServer{repo: repo}
	var events ResponseEvents
	if withEvents {
		ts.events = &fakeEvents{}
		events = ts.events
	}

	universe := testUniverse()
	sessions := NewSessionHandlers(repo, events, universe)
	sessions.Now = func() time.Time { return fixedNow }
	stats := NewStatsHandlers(events)
	stats.Now = func() time.Time { return fixedNow }

	r := gin.New()
	RegisterRoutes(r, sessions, NewAnalysisHandlers(repo, universe, cache), stats)
	ts.router = r
	return ts
}

func (ts *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "quiz-test")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func samplePayload() gin.H {
	return gin.H{
		"timestamp": fixedNow.Add(-90 * time.Second).Format(time.RFC3339),
		"responses": []gin.H{
			{"topic": "Pensamento computacional", "isCSRelated": true, "selected": true, "correct": true, "timeSpent": 8},
			{"topic": "Marketing Digital", "isCSRelated": false, "selected": false, "correct": true},
			{"topic": "", "isCSRelated": true, "selected": false, "correct": false, "timeSpent": 3},
		},
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
}

func register(t *testing.T, ts *testServer, path string) string {
	t.Helper()
	w := ts.do(http.MethodPost, path, samplePayload())
	if w.Code != http.StatusOK {
		t.Fatalf("POST %s status = %d, body %s", path, w.Code, w.Body.String())
	}
	var resp struct {
		SessionID string `json:"sessionId"`
	}
	decode(t, w, &resp)
	return resp.SessionID
}

func TestRegisterSession(t *testing.T) {
	ts := newTestServer(t, true)

	w := ts.do(http.MethodPost, "/api/sessions", samplePayload())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Message   string              `json:"message"`
		SessionID string              `json:"sessionId"`
		Stats     models.SessionStats `json:"stats"`
		Timestamp string              `json:"timestamp"`
	}
	decode(t, w, &resp)
	if resp.SessionID == "" {
		t.Fatal("missing sessionId")
	}
	if resp.Stats.TotalQuestions != 3 || resp.Stats.CorrectAnswers != 2 {
		t.Errorf("stats = %+v", resp.Stats)
	}
	if !resp.Stats.Percentage.Equal(decimal.NewFromInt(67)) {
		t.Errorf("percentage = %s, want 67", resp.Stats.Percentage)
	}
	if resp.Timestamp != fixedNow.Format(time.RFC3339) {
		t.Errorf("timestamp = %q", resp.Timestamp)
	}

	session, err := ts.repo.GetSession(context.Background(), resp.SessionID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if session.DurationSeconds != 90 {
		t.Errorf("duration = %d, want 90", session.DurationSeconds)
	}
	if session.UserAgent != "quiz-test" {
		t.Errorf("user agent = %q", session.UserAgent)
	}
	if len(session.Responses) != 3 {
		t.Fatalf("stored %d responses, want 3", len(session.Responses))
	}
	if got := session.Responses[1].TimeSpentSeconds; got != DefaultTimeSpentSeconds {
		t.Errorf("default time spent = %d, want %d", got, DefaultTimeSpentSeconds)
	}
	if got := session.Responses[2].Topic; got != UnspecifiedTopic {
		t.Errorf("default topic = %q, want %q", got, UnspecifiedTopic)
	}
	for i, r := range session.Responses {
		if r.Order != i+1 {
			t.Errorf("response %d order = %d", i, r.Order)
		}
	}

	if len(ts.events.inserted) != 3 {
		t.Fatalf("mirrored %d events, want 3", len(ts.events.inserted))
	}
	if ts.events.inserted[0].SessionID != resp.SessionID {
		t.Errorf("event session = %q", ts.events.inserted[0].SessionID)
	}
}

func TestRegisterSessionLegacyPath(t *testing.T) {
	ts := newTestServer(t, false)
	if id := register(t, ts, "/registrar"); id == "" {
		t.Fatal("missing sessionId")
	}
}

func TestRegisterSessionMirrorFailureIsNotFatal(t *testing.T) {
	ts := newTestServer(t, true)
	ts.events.insertErr = errors.New("clickhouse down")

	id := register(t, ts, "/api/sessions")
	if _, err := ts.repo.GetSession(context.Background(), id); err != nil {
		t.Fatalf("session not stored: %v", err)
	}
}

func TestRegisterSessionRejectsInvalidBody(t *testing.T) {
	ts := newTestServer(t, false)

	tests := []struct {
		name string
		body any
	}{
		{"no responses", gin.H{"timestamp": fixedNow.Format(time.RFC3339), "responses": []gin.H{}}},
		{"missing timestamp", gin.H{"responses": []gin.H{{"topic": "x"}}}},
		{"not an object", []int{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(http.MethodPost, "/api/sessions", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}

	count, err := ts.repo.CountSessions(context.Background())
	if err != nil {
		t.Fatalf("CountSessions: %v", err)
	}
	if count != 0 {
		t.Errorf("stored %d sessions from invalid bodies", count)
	}
}

func TestCalculateSessionStats(t *testing.T) {
	tests := []struct {
		correct, total int
		want           string
	}{
		{2, 3, "67"},
		{1, 8, "13"},
		{0, 4, "0"},
		{5, 5, "100"},
		{0, 0, "0"},
	}
	for _, tt := range tests {
		answers := make([]models.AnswerSubmission, tt.total)
		for i := 0; i < tt.correct; i++ {
			answers[i].Correct = true
		}
		stats := CalculateSessionStats(answers)
		if stats.CorrectAnswers != tt.correct || stats.TotalQuestions != tt.total {
			t.Errorf("%d/%d: counts = %+v", tt.correct, tt.total, stats)
		}
		if !stats.Percentage.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("%d/%d: percentage = %s, want %s", tt.correct, tt.total, stats.Percentage, tt.want)
		}
	}
}

func TestGetSession(t *testing.T) {
	ts := newTestServer(t, false)
	id := register(t, ts, "/api/sessions")

	w := ts.do(http.MethodGet, "/api/sessions/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Session models.Session `json:"session"`
		Row     map[string]any `json:"row"`
	}
	decode(t, w, &resp)
	if resp.Session.ID != id {
		t.Errorf("session id = %q", resp.Session.ID)
	}
	if got := resp.Row["pensamento_computacional"]; got != float64(analysis.CodeSelected) {
		t.Errorf("pensamento_computacional = %v, want 2", got)
	}
	if got := resp.Row["robtica_na_educao"]; got != float64(analysis.CodeAbsent) {
		t.Errorf("robtica_na_educao = %v, want 0", got)
	}

	if w := ts.do(http.MethodGet, "/api/sessions/does-not-exist", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing session status = %d, want 404", w.Code)
	}
}

func TestTestDBAndRecentSessions(t *testing.T) {
	ts := newTestServer(t, false)
	register(t, ts, "/api/sessions")
	register(t, ts, "/api/sessions")

	w := ts.do(http.MethodGet, "/api/test-db", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("test-db status = %d", w.Code)
	}
	var dbResp struct {
		TotalSessions int `json:"totalSessions"`
	}
	decode(t, w, &dbResp)
	if dbResp.TotalSessions != 2 {
		t.Errorf("totalSessions = %d, want 2", dbResp.TotalSessions)
	}

	w = ts.do(http.MethodGet, "/api/analytics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("analytics status = %d", w.Code)
	}
	var recent struct {
		TotalSessions int              `json:"totalSessions"`
		Sessions      []models.Session `json:"sessions"`
	}
	decode(t, w, &recent)
	if recent.TotalSessions != 2 || len(recent.Sessions) != 2 {
		t.Errorf("recent = %d/%d sessions, want 2", recent.TotalSessions, len(recent.Sessions))
	}
}

func TestGetAnalysisJSON(t *testing.T) {
	ts := newTestServer(t, false)
	register(t, ts, "/api/sessions")

	w := ts.do(http.MethodGet, "/api/analysis", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var doc struct {
		TotalSessions     int                                `json:"total_sessions"`
		AnalysisData      []map[string]any                   `json:"analysis_data"`
		TopicStatistics   map[string]analysis.TopicStatistic `json:"topic_statistics"`
		DifficultyRanking []analysis.TopicStatistic          `json:"difficulty_ranking"`
		Legend            analysis.Legend                    `json:"legend"`
	}
	decode(t, w, &doc)

	if doc.TotalSessions != 1 || len(doc.AnalysisData) != 1 {
		t.Fatalf("total_sessions = %d, rows = %d", doc.TotalSessions, len(doc.AnalysisData))
	}
	row := doc.AnalysisData[0]
	if row["session_number"] != float64(1) {
		t.Errorf("session_number = %v", row["session_number"])
	}
	if row["marketing_digital"] != float64(analysis.CodeShown) {
		t.Errorf("marketing_digital = %v", row["marketing_digital"])
	}
	if _, ok := doc.TopicStatistics["robtica_na_educao"]; ok {
		t.Error("topic without appearances should not have statistics")
	}
	stat := doc.TopicStatistics["pensamento_computacional"]
	if stat.TotalAppearances != 1 || stat.TotalClicks != 1 || stat.ClickRate != 100 {
		t.Errorf("pensamento_computacional stats = %+v", stat)
	}
	if len(doc.DifficultyRanking) != 2 {
		t.Errorf("ranking has %d topics, want 2", len(doc.DifficultyRanking))
	}
	if doc.Legend.Summary != analysis.LegendSummary {
		t.Errorf("legend summary = %q", doc.Legend.Summary)
	}
}

func TestGetAnalysisFormats(t *testing.T) {
	ts := newTestServer(t, false)
	register(t, ts, "/api/sessions")

	w := ts.do(http.MethodGet, "/api/analysis?format=yaml", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("yaml status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/yaml") {
		t.Errorf("yaml content type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "total_sessions: 1") {
		t.Errorf("yaml body missing total_sessions:\n%s", w.Body.String())
	}

	w = ts.do(http.MethodGet, "/api/analysis?format=xml", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("xml status = %d, want 400", w.Code)
	}
}

func TestDownloadCSV(t *testing.T) {
	ts := newTestServer(t, false)
	register(t, ts, "/api/sessions")

	w := ts.do(http.MethodGet, "/api/analysis/csv", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, CSVFileName) {
		t.Errorf("Content-Disposition = %q", cd)
	}
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d csv lines, want header + 1 row", len(lines))
	}
	if !strings.HasPrefix(lines[0], "session_id,session_number,date,") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[0], "pensamento_computacional_correct") {
		t.Errorf("header lacks auxiliary columns: %q", lines[0])
	}
}

func TestAnalysisCacheReusesReport(t *testing.T) {
	ts := newTestServer(t, false)
	register(t, ts, "/api/sessions")

	for i := 0; i < 3; i++ {
		if w := ts.do(http.MethodGet, "/api/topic-stats", nil); w.Code != http.StatusOK {
			t.Fatalf("topic-stats status = %d", w.Code)
		}
	}
	if ts.repo.fetches != 1 {
		t.Errorf("history fetched %d times, want 1", ts.repo.fetches)
	}

	register(t, ts, "/api/sessions")
	if w := ts.do(http.MethodGet, "/api/analysis", nil); w.Code != http.StatusOK {
		t.Fatalf("analysis status = %d", w.Code)
	}
	if ts.repo.fetches != 2 {
		t.Errorf("history fetched %d times after a new session, want 2", ts.repo.fetches)
	}
}

func TestAnalysisFetchFailure(t *testing.T) {
	ts := newTestServer(t, false)
	ts.repo.fetchErr = errors.New("connection refused")

	w := ts.do(http.MethodGet, "/api/analysis", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "analysis_data") {
		t.Error("failed fetch must not produce a document")
	}
}

func TestGetTopicStats(t *testing.T) {
	ts := newTestServer(t, false)
	register(t, ts, "/api/sessions")

	w := ts.do(http.MethodGet, "/api/topic-stats?top=1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		TotalSessions int                       `json:"total_sessions"`
		Ranking       []analysis.TopicStatistic `json:"difficulty_ranking"`
		MostClicked   []analysis.TopicStatistic `json:"most_clicked"`
	}
	decode(t, w, &resp)
	if len(resp.MostClicked) != 1 || resp.MostClicked[0].Slug != "pensamento_computacional" {
		t.Errorf("most clicked = %+v", resp.MostClicked)
	}

	if w := ts.do(http.MethodGet, "/api/topic-stats?top=zero", nil); w.Code != http.StatusBadRequest {
		t.Errorf("invalid top status = %d, want 400", w.Code)
	}
}

func TestStatsDisabledWithoutClickHouse(t *testing.T) {
	ts := newTestServer(t, false)
	for _, path := range []string{
		"/api/stats/response-counts?interval=Day",
		"/api/stats/average-time",
		"/api/stats/topic-success",
	} {
		if w := ts.do(http.MethodGet, path, nil); w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s status = %d, want 503", path, w.Code)
		}
	}
}

func TestStatsEndpoints(t *testing.T) {
	ts := newTestServer(t, true)
	ts.events.avg = 7.5
	ts.events.success = []models.TopicSuccessResult{{Topic: "Marketing Digital", Total: 4, Correct: 1}}

	tests := []struct {
		path string
		want int
	}{
		{"/api/stats/response-counts", http.StatusBadRequest},
		{"/api/stats/response-counts?interval=Fortnight", http.StatusBadRequest},
		{"/api/stats/response-counts?interval=Day&start=bad", http.StatusBadRequest},
		{"/api/stats/response-counts?interval=Day&topic=Marketing+Digital", http.StatusOK},
		{"/api/stats/average-time?start=2025-03-10T00:00:00Z", http.StatusOK},
		{"/api/stats/topic-success?limit=0", http.StatusBadRequest},
		{"/api/stats/topic-success?limit=5", http.StatusOK},
	}
	for _, tt := range tests {
		if w := ts.do(http.MethodGet, tt.path, nil); w.Code != tt.want {
			t.Errorf("%s status = %d, want %d (body %s)", tt.path, w.Code, tt.want, w.Body.String())
		}
	}
	if ts.events.gotLimit != 5 {
		t.Errorf("limit = %d, want 5", ts.events.gotLimit)
	}

	w := ts.do(http.MethodGet, "/api/stats/average-time?topic=Marketing+Digital", nil)
	var avg struct {
		Topic   string  `json:"topic"`
		Average float64 `json:"averageTimeSpentSeconds"`
	}
	decode(t, w, &avg)
	if avg.Topic != "Marketing Digital" || avg.Average != 7.5 {
		t.Errorf("average response = %+v", avg)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, false)
	if w := ts.do(http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Errorf("health status = %d", w.Code)
	}
}
