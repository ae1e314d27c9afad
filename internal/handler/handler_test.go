package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/gateway"
	"github.com/inucreativehrd21/FINAL-SERVER/internal/middleware"
	"github.com/inucreativehrd21/FINAL-SERVER/internal/personalization"
	"github.com/inucreativehrd21/FINAL-SERVER/internal/service"
	"github.com/inucreativehrd21/FINAL-SERVER/internal/store"
	"github.com/inucreativehrd21/FINAL-SERVER/pkg/logger"
)

const testSecret = "handler-secret"

type stubGateway struct {
	err error
}

func (g *stubGateway) Ask(ctx context.Context, req gateway.Request) (*gateway.AnswerResult, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &gateway.AnswerResult{
		Answer:           "answer to " + req.Question,
		Sources:          []any{"doc"},
		Metadata:         map[string]any{},
		RelatedQuestions: []any{"next?"},
		Elapsed:          500 * time.Millisecond,
	}, nil
}

type testServer struct {
	handler http.Handler
	gateway *stubGateway
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(ctx, store.Config{Driver: "sqlite", URL: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	_, err = st.Migrate(ctx)
	require.NoError(t, err)

	log := logger.NewNop()
	gw := &stubGateway{}
	sessions := service.NewSessionService(st, log)

	return &testServer{
		gateway: gw,
		handler: NewRouter(Deps{
			Sessions:    sessions,
			Turns:       service.NewTurnService(sessions, st, personalization.NewProvider(st, 0), gw, nil, log),
			Feedback:    service.NewFeedbackService(st, nil, log),
			Analytics:   service.NewAnalyticsService(st, time.UTC),
			History:     service.NewHistoryService(st),
			DB:          st,
			Logger:      log,
			ServiceName: "chatbot-test",
			JWTSecret:   testSecret,
		}),
	}
}

func token(t *testing.T, userID int64) string {
	t.Helper()
	claims := &middleware.Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   fmt.Sprint(userID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func (s *testServer) do(t *testing.T, userID int64, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+token(t, userID))
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *testServer) chat(t *testing.T, userID int64, message string) (sessionID, messageID int64) {
	t.Helper()
	rec := s.do(t, userID, http.MethodPost, "/api/v1/chatbot/chat", map[string]any{"message": message})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.SessionID, resp.MessageID
}

func TestRouter_RequiresAuth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, 0, http.MethodGet, "/api/v1/chatbot/sessions", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, 0, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, 0, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChat_Success(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, 1, http.MethodPost, "/api/v1/chatbot/chat", map[string]any{"message": "How do I use git?"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotZero(t, resp.SessionID)
	assert.NotZero(t, resp.MessageID)
	assert.Equal(t, "answer to How do I use git?", resp.Data.Response)
	assert.Equal(t, []any{"doc"}, resp.Data.Sources)
	assert.Equal(t, []any{"next?"}, resp.Data.RelatedQuestions)
	assert.NotEmpty(t, rec.Header().Get(middleware.CorrelationIDHeader))

	rec = s.do(t, 1, http.MethodPost, "/api/v1/chatbot/chat", map[string]any{"message": "again", "session_id": resp.SessionID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(resp.SessionID), decode(t, rec)["session_id"])
}

func TestChat_BadRequests(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"malformed", "{not json"},
		{"missing message", map[string]any{}},
		{"whitespace", map[string]any{"message": "   "}},
		{"bad session id", map[string]any{"message": "hi", "session_id": -3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, 1, http.MethodPost, "/api/v1/chatbot/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestChat_ZeroSessionIDStartsNewSession(t *testing.T) {
	s := newTestServer(t)
	existing, _ := s.chat(t, 1, "hello")

	rec := s.do(t, 1, http.MethodPost, "/api/v1/chatbot/chat", map[string]any{"message": "fresh start", "session_id": 0})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	sessionID := int64(decode(t, rec)["session_id"].(float64))
	assert.NotZero(t, sessionID)
	assert.NotEqual(t, existing, sessionID)
}

func TestChat_ForeignSession(t *testing.T) {
	s := newTestServer(t)
	sessionID, _ := s.chat(t, 1, "hello")

	rec := s.do(t, 2, http.MethodPost, "/api/v1/chatbot/chat", map[string]any{"message": "hi", "session_id": sessionID})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChat_GatewayErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"not configured", gateway.ErrNotConfigured, http.StatusInternalServerError, "rag gateway is not configured"},
		{"logic", &gateway.UpstreamLogicError{Message: "retriever offline"}, http.StatusInternalServerError, "retriever offline"},
		{"http", &gateway.UpstreamHTTPError{StatusCode: 500}, http.StatusBadGateway, "rag gateway returned status 500"},
		{"timeout", gateway.ErrTimeout, http.StatusGatewayTimeout, "rag gateway timed out"},
		{"unreachable", gateway.ErrUnreachable, http.StatusServiceUnavailable, "rag gateway is unreachable"},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.gateway.err = tt.err

			rec := s.do(t, 1, http.MethodPost, "/api/v1/chatbot/chat", map[string]any{"message": "hello"})
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, decode(t, rec)["error"])
		})
	}
}

func TestSessions_Endpoints(t *testing.T) {
	s := newTestServer(t)
	sessionID, _ := s.chat(t, 1, "first question")
	path := fmt.Sprintf("/api/v1/chatbot/sessions/%d", sessionID)

	rec := s.do(t, 1, http.MethodGet, "/api/v1/chatbot/sessions/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode(t, rec)["data"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "first question", list[0].(map[string]any)["title"])
	assert.Equal(t, float64(2), list[0].(map[string]any)["message_count"])

	rec = s.do(t, 1, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode(t, rec)["data"].(map[string]any)
	assert.Len(t, detail["messages"], 2)

	assert.Equal(t, http.StatusNotFound, s.do(t, 2, http.MethodGet, path, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, 1, http.MethodGet, "/api/v1/chatbot/sessions/abc", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, 2, http.MethodDelete, path, nil).Code)

	rec = s.do(t, 1, http.MethodDelete, path+"/delete", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])
	assert.Equal(t, http.StatusNotFound, s.do(t, 1, http.MethodGet, path, nil).Code)
}

func TestFeedback_Endpoint(t *testing.T) {
	s := newTestServer(t)
	_, messageID := s.chat(t, 1, "hello")

	rec := s.do(t, 1, http.MethodPost, "/api/v1/chatbot/feedback", map[string]any{"message_id": messageID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "is_helpful is required", decode(t, rec)["error"])

	body := map[string]any{"message_id": messageID, "is_helpful": false, "feedback_comment": "too vague"}
	assert.Equal(t, http.StatusNotFound, s.do(t, 2, http.MethodPost, "/api/v1/chatbot/feedback", body).Code)

	rec = s.do(t, 1, http.MethodPost, "/api/v1/chatbot/feedback", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])
}

func TestAnalytics_Endpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, 1, http.MethodGet, "/api/v1/chatbot/analytics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"has_data":false}`, rec.Body.String())

	s.chat(t, 1, "python list comprehension")

	rec = s.do(t, 1, http.MethodGet, "/api/v1/chatbot/analytics?days=7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["has_data"])
	assert.Equal(t, float64(1), body["total_questions"])

	assert.Equal(t, http.StatusBadRequest, s.do(t, 1, http.MethodGet, "/api/v1/chatbot/analytics?days=abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, 1, http.MethodGet, "/api/v1/chatbot/analytics?days=400", nil).Code)
}

func TestHistory_Endpoint(t *testing.T) {
	s := newTestServer(t)
	s.chat(t, 1, "git branch basics")
	s.chat(t, 1, "python typing")

	rec := s.do(t, 1, http.MethodGet, "/api/v1/chatbot/history?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, float64(1), body["limit"])
	assert.Len(t, body["results"], 1)

	rec = s.do(t, 1, http.MethodGet, "/api/v1/chatbot/history?category=git", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["count"])

	assert.Equal(t, http.StatusBadRequest, s.do(t, 1, http.MethodGet, "/api/v1/chatbot/history?category=cobol", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, 1, http.MethodGet, "/api/v1/chatbot/history?offset=x", nil).Code)
}
