package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"mbti-bot/internal/domain"
	"mbti-bot/internal/service"
)

type mockAssessmentStore struct {
	retention   int
	results     map[string]domain.Result
	history     map[string][]domain.HistoryEntry
	finalizeErr error
}

func newMockAssessmentStore() *mockAssessmentStore {
	return &mockAssessmentStore{
		retention: 5,
		results:   make(map[string]domain.Result),
		history:   make(map[string][]domain.HistoryEntry),
	}
}

func (m *mockAssessmentStore) Finalize(_ context.Context, result domain.Result, entry domain.HistoryEntry) (*domain.Result, error) {
	if m.finalizeErr != nil {
		return nil, m.finalizeErr
	}
	var previous *domain.Result
	if prev, ok := m.results[result.UserID]; ok {
		prevCopy := prev
		previous = &prevCopy
	}
	m.results[result.UserID] = result
	entries := m.history[entry.UserID]
	if len(entries) >= m.retention {
		entries = entries[1:]
	}
	m.history[entry.UserID] = append(entries, entry)
	return previous, nil
}

func (m *mockAssessmentStore) GetCurrentResult(_ context.Context, userID string) (domain.Result, error) {
	res, ok := m.results[userID]
	if !ok {
		return domain.Result{}, pgx.ErrNoRows
	}
	return res, nil
}

func (m *mockAssessmentStore) ListHistory(_ context.Context, userID string, limit int) ([]domain.HistoryEntry, error) {
	entries := m.history[userID]
	if limit <= 0 || limit > m.retention {
		limit = m.retention
	}
	var out []domain.HistoryEntry
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

func (m *mockAssessmentStore) ListTrend(_ context.Context, userID string) ([]domain.HistoryEntry, error) {
	return append([]domain.HistoryEntry(nil), m.history[userID]...), nil
}

func (m *mockAssessmentStore) DeleteRecent(_ context.Context, userID string, count int) (int64, error) {
	entries := m.history[userID]
	if count > len(entries) {
		count = len(entries)
	}
	m.history[userID] = entries[:len(entries)-count]
	return int64(count), nil
}

func testRouter(t *testing.T, store *mockAssessmentStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	catalog, err := domain.NewCatalog([]domain.Question{
		{Text: "m1", Phase: domain.PhaseMain, Traits: [4]string{"E", "E", "I", "I"}},
		{Text: "m2", Phase: domain.PhaseMain, Traits: [4]string{"E", "E", "I", "I"}},
		{Text: "s1", Phase: domain.PhaseSubtype, Values: [4]float64{0.0, 0.3, 0.6, 0.9}},
	})
	if err != nil {
		t.Fatalf("unexpected catalog error: %v", err)
	}

	tokens := service.NewSessionTokenCodec("test-secret", time.Hour)
	guard := service.NewMemoryStepGuard(time.Hour)
	assessments := service.NewAssessmentService(catalog, store, tokens, guard, logger)
	reports := service.NewReportService(catalog, nil, logger)
	admin := service.NewAdminService(adminHashFixture(t), "test-secret", 30*time.Minute, 5, store)

	assessmentH := NewAssessmentHandler(logger, assessments, reports, store)
	adminH := NewAdminHandler(logger, admin)
	return NewRouter(logger, assessmentH, adminH, admin)
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type promptResponse struct {
	Prompt struct {
		Token  string `json:"session_token"`
		Number int    `json:"number"`
		Total  int    `json:"total"`
		Intro  string `json:"intro"`
	} `json:"prompt"`
}

func TestAssessmentHandler_StartReturnsFirstPrompt(t *testing.T) {
	r := testRouter(t, newMockAssessmentStore())

	rec := doJSON(t, r, http.MethodPost, "/assessment/start", gin.H{
		"user_id":  "user-1",
		"username": "Alice",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp promptResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Prompt.Token == "" {
		t.Fatalf("expected a session token in the first prompt")
	}
	if resp.Prompt.Number != 1 || resp.Prompt.Total != 3 {
		t.Fatalf("expected prompt 1/3, got %d/%d", resp.Prompt.Number, resp.Prompt.Total)
	}
	if resp.Prompt.Intro == "" {
		t.Fatalf("expected intro text on the first prompt")
	}
}

func TestAssessmentHandler_StartRequiresUserID(t *testing.T) {
	r := testRouter(t, newMockAssessmentStore())
	rec := doJSON(t, r, http.MethodPost, "/assessment/start", gin.H{"username": "Alice"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAssessmentHandler_AnswerFlowCompletes(t *testing.T) {
	store := newMockAssessmentStore()
	r := testRouter(t, store)

	rec := doJSON(t, r, http.MethodPost, "/assessment/start", gin.H{"user_id": "user-1", "username": "Alice"}, nil)
	var resp promptResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	token := resp.Prompt.Token
	for step := 0; step < 2; step++ {
		rec = doJSON(t, r, http.MethodPost, "/assessment/answer", gin.H{
			"user_id":       "user-1",
			"session_token": token,
			"choice":        3,
		}, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 at step %d, got %d: %s", step, rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		token = resp.Prompt.Token
	}

	rec = doJSON(t, r, http.MethodPost, "/assessment/answer", gin.H{
		"user_id":       "user-1",
		"session_token": token,
		"choice":        3,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on final answer, got %d: %s", rec.Code, rec.Body.String())
	}

	var final struct {
		Result    *domain.Result `json:"result"`
		Delivered bool           `json:"delivered"`
		Message   string         `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &final); err != nil {
		t.Fatalf("decode final response: %v", err)
	}
	if final.Result == nil || final.Result.TypeCode != "INTJ" || final.Result.Subtype != "A" {
		t.Fatalf("expected INTJ-A result, got %+v", final.Result)
	}
	// Sin contacto no hay entrega privada; el mensaje lo refleja.
	if final.Delivered {
		t.Fatalf("expected delivered=false without a contact address")
	}
	if final.Message == "" {
		t.Fatalf("expected a fallback message")
	}
	if _, ok := store.results["user-1"]; !ok {
		t.Fatalf("expected result persisted after completion")
	}
}

func TestAssessmentHandler_AnswerRejectsNonOwner(t *testing.T) {
	r := testRouter(t, newMockAssessmentStore())

	rec := doJSON(t, r, http.MethodPost, "/assessment/start", gin.H{"user_id": "user-1"}, nil)
	var resp promptResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	rec = doJSON(t, r, http.MethodPost, "/assessment/answer", gin.H{
		"user_id":       "user-2",
		"session_token": resp.Prompt.Token,
		"choice":        0,
	}, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d", rec.Code)
	}
}

func TestAssessmentHandler_AnswerRequiresChoice(t *testing.T) {
	r := testRouter(t, newMockAssessmentStore())
	rec := doJSON(t, r, http.MethodPost, "/assessment/answer", gin.H{
		"user_id":       "user-1",
		"session_token": "whatever",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without choice, got %d", rec.Code)
	}
}

func TestAssessmentHandler_AnswerRejectsBadToken(t *testing.T) {
	r := testRouter(t, newMockAssessmentStore())
	rec := doJSON(t, r, http.MethodPost, "/assessment/answer", gin.H{
		"user_id":       "user-1",
		"session_token": "not-a-token",
		"choice":        0,
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a garbage token, got %d", rec.Code)
	}
}

func TestAssessmentHandler_CurrentResultNotFound(t *testing.T) {
	r := testRouter(t, newMockAssessmentStore())
	rec := doJSON(t, r, http.MethodGet, "/assessment/result/user-9", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a stored result, got %d", rec.Code)
	}
}

func TestAssessmentHandler_CurrentResultFound(t *testing.T) {
	store := newMockAssessmentStore()
	store.results["user-1"] = domain.Result{UserID: "user-1", TypeCode: "ENFP", Subtype: "T"}
	r := testRouter(t, store)

	rec := doJSON(t, r, http.MethodGet, "/assessment/result/user-1", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Result domain.Result `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Result.TypeCode != "ENFP" {
		t.Fatalf("expected ENFP, got %q", resp.Result.TypeCode)
	}
}

func TestAssessmentHandler_HistoryAndTrend(t *testing.T) {
	store := newMockAssessmentStore()
	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		store.history["user-1"] = append(store.history["user-1"], domain.HistoryEntry{
			UserID:    "user-1",
			TypeCode:  "INTJ",
			Timestamp: now.Add(time.Duration(i) * time.Minute),
		})
	}
	r := testRouter(t, store)

	rec := doJSON(t, r, http.MethodGet, "/assessment/history/user-1?limit=2", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var historyResp struct {
		History []domain.HistoryEntry `json:"history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &historyResp); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(historyResp.History) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(historyResp.History))
	}
	// Historial descendente: primero el mas nuevo.
	if !historyResp.History[0].Timestamp.After(historyResp.History[1].Timestamp) {
		t.Fatalf("expected newest-first history ordering")
	}

	rec = doJSON(t, r, http.MethodGet, "/assessment/trend/user-1", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var trendResp struct {
		Trend []domain.HistoryEntry `json:"trend"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &trendResp); err != nil {
		t.Fatalf("decode trend: %v", err)
	}
	if len(trendResp.Trend) != 3 {
		t.Fatalf("expected 3 trend entries, got %d", len(trendResp.Trend))
	}
	if !trendResp.Trend[0].Timestamp.Before(trendResp.Trend[2].Timestamp) {
		t.Fatalf("expected oldest-first trend ordering")
	}
}
