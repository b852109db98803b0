package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mamaepingo/voice-eval/api/middleware"
	"github.com/mamaepingo/voice-eval/domain"
	"github.com/mamaepingo/voice-eval/repository"
	"github.com/mamaepingo/voice-eval/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// catalogStub serves a fixed catalog without touching object storage.
type catalogStub struct {
	items []domain.AudioItem
	audio []byte
}

func (s *catalogStub) Build(context.Context) ([]domain.AudioItem, error) {
	return append([]domain.AudioItem(nil), s.items...), nil
}

func (s *catalogStub) StreamURL(_ context.Context, item domain.AudioItem) (string, error) {
	return "https://signed.example/" + item.AnonymousID, nil
}

func (s *catalogStub) FetchAudio(context.Context, domain.AudioItem) ([]byte, error) {
	return s.audio, nil
}

func (s *catalogStub) Invalidate() {}

// recorderStub keeps recorded evaluations in memory, keyed like the
// document store.
type recorderStub struct {
	records map[string]domain.EvaluationRecord
}

func (s *recorderStub) Record(_ context.Context, rec *domain.EvaluationRecord) error {
	if rec.Score < 1 || rec.Score > 5 {
		return fmt.Errorf("%w: score=%d", domain.ErrInvalidInput, rec.Score)
	}
	s.records[rec.DocumentID()] = *rec
	return nil
}

func stubItems(n int) []domain.AudioItem {
	items := make([]domain.AudioItem, n)
	for i := range items {
		items[i] = domain.AudioItem{
			AnonymousID: fmt.Sprintf("audio_%08x_%d", i, i),
			Category:    "podcast",
			Duration:    domain.DurationShort,
			ContentType: "audio/mpeg",
		}
	}
	return items
}

type apiFixture struct {
	engine   *gin.Engine
	tokens   *middleware.TokenManager
	recorder *recorderStub
}

func newAPIFixture(t *testing.T, catalog domain.CatalogUsecase) *apiFixture {
	t.Helper()

	recorder := &recorderStub{records: make(map[string]domain.EvaluationRecord)}
	sessionRepo := repository.NewSessionRepository(time.Hour)
	sessions := usecase.NewSessionUsecase(sessionRepo, catalog, recorder, 5*time.Second, zap.NewNop())
	tokens := middleware.NewTokenManager("test-secret", time.Hour)

	sessionCtrl := NewSessionController(sessions, catalog, tokens)
	audioCtrl := NewAudioController(sessions, catalog)

	engine := gin.New()
	public := engine.Group("/api")
	protected := engine.Group("/api")
	protected.Use(middleware.SessionRequired(tokens))

	public.POST("/sessions", sessionCtrl.Start)
	sessionGroup := protected.Group("/sessions")
	{
		sessionGroup.GET("/current", sessionCtrl.Current)
		sessionGroup.GET("/progress", sessionCtrl.Progress)
		sessionGroup.POST("/submit", sessionCtrl.Submit)
		sessionGroup.POST("/skip", sessionCtrl.Skip)
		sessionGroup.POST("/previous", sessionCtrl.Previous)
		sessionGroup.POST("/next", sessionCtrl.Next)
		sessionGroup.POST("/reset", sessionCtrl.Reset)
	}
	protected.GET("/audio/stream", audioCtrl.Stream)

	return &apiFixture{engine: engine, tokens: tokens, recorder: recorder}
}

func (f *apiFixture) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("X-Session-Token", token)
	}
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	payload := make(map[string]json.RawMessage)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func (f *apiFixture) startSession(t *testing.T) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/sessions", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Token      string `json:"token"`
		SessionID  string `json:"session_id"`
		TotalItems int    `json:"total_items"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec)["session"], &envelope))
	require.NotEmpty(t, envelope.Token)
	require.NotEmpty(t, envelope.SessionID)
	return envelope.Token
}

func TestStartSessionIssuesToken(t *testing.T) {
	fix := newAPIFixture(t, &catalogStub{items: stubItems(3)})

	rec := fix.do(t, http.MethodPost, "/api/sessions", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Token      string `json:"token"`
		SessionID  string `json:"session_id"`
		TotalItems int    `json:"total_items"`
		Empty      bool   `json:"empty"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec)["session"], &envelope))
	assert.Equal(t, 3, envelope.TotalItems)
	assert.False(t, envelope.Empty)

	sessionID, err := fix.tokens.Parse(envelope.Token)
	require.NoError(t, err)
	assert.Equal(t, envelope.SessionID, sessionID)
}

func TestStartSessionEmptyCatalog(t *testing.T) {
	fix := newAPIFixture(t, &catalogStub{})

	rec := fix.do(t, http.MethodPost, "/api/sessions", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Empty   bool   `json:"empty"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec)["session"], &envelope))
	assert.True(t, envelope.Empty)
	assert.Equal(t, "no audio files available for evaluation", envelope.Message)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	fix := newAPIFixture(t, &catalogStub{items: stubItems(2)})

	for _, path := range []string{"/api/sessions/current", "/api/sessions/progress"} {
		rec := fix.do(t, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
	rec := fix.do(t, http.MethodPost, "/api/sessions/submit", "", `{"score":3}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCurrentExposesSignedURL(t *testing.T) {
	fix := newAPIFixture(t, &catalogStub{items: stubItems(2)})
	token := fix.startSession(t)

	rec := fix.do(t, http.MethodGet, "/api/sessions/current", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Complete bool   `json:"complete"`
		Index    int    `json:"index"`
		Total    int    `json:"total"`
		AudioURL string `json:"audio_url"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec)["current"], &view))
	assert.False(t, view.Complete)
	assert.Equal(t, 0, view.Index)
	assert.Equal(t, 2, view.Total)
	assert.True(t, strings.HasPrefix(view.AudioURL, "https://signed.example/"))
}

func TestSubmitFlow(t *testing.T) {
	fix := newAPIFixture(t, &catalogStub{items: stubItems(2)})
	token := fix.startSession(t)

	rec := fix.do(t, http.MethodPost, "/api/sessions/submit", token, `{"score":4}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var progress struct {
		Index     int  `json:"index"`
		Evaluated int  `json:"evaluated"`
		Complete  bool `json:"complete"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec)["progress"], &progress))
	assert.Equal(t, 1, progress.Index)
	assert.Equal(t, 1, progress.Evaluated)
	assert.False(t, progress.Complete)
	assert.Len(t, fix.recorder.records, 1)

	rec = fix.do(t, http.MethodPost, "/api/sessions/submit", token, `{"score":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(decode(t, rec)["progress"], &progress))
	assert.True(t, progress.Complete)
	assert.Len(t, fix.recorder.records, 2)
}

func TestSubmitRejectsOutOfRangeScore(t *testing.T) {
	fix := newAPIFixture(t, &catalogStub{items: stubItems(2)})
	token := fix.startSession(t)

	for _, body := range []string{`{"score":0}`, `{"score":6}`, `{"score":-1}`} {
		rec := fix.do(t, http.MethodPost, "/api/sessions/submit", token, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Contains(t, rec.Body.String(), "INVALID_SCORE", body)
	}
	assert.Empty(t, fix.recorder.records)

	// the rejected submissions must not advance the cursor
	rec := fix.do(t, http.MethodGet, "/api/sessions/progress", token, "")
	var progress struct {
		Index int `json:"index"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec)["progress"], &progress))
	assert.Equal(t, 0, progress.Index)
}

func TestSkipRecordsNothing(t *testing.T) {
	fix := newAPIFixture(t, &catalogStub{items: stubItems(2)})
	token := fix.startSession(t)

	rec := fix.do(t, http.MethodPost, "/api/sessions/skip", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var progress struct {
		Index     int `json:"index"`
		Evaluated int `json:"evaluated"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec)["progress"], &progress))
	assert.Equal(t, 1, progress.Index)
	assert.Zero(t, progress.Evaluated)
	assert.Empty(t, fix.recorder.records)
}

func TestNextWithoutRatingConflicts(t *testing.T) {
	fix := newAPIFixture(t, &catalogStub{items: stubItems(2)})
	token := fix.startSession(t)

	rec := fix.do(t, http.MethodPost, "/api/sessions/next", token, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_TRANSITION")
}

func TestPreviousAtStartConflicts(t *testing.T) {
	fix := newAPIFixture(t, &catalogStub{items: stubItems(2)})
	token := fix.startSession(t)

	rec := fix.do(t, http.MethodPost, "/api/sessions/previous", token, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_TRANSITION")
}

func TestResetIssuesFreshToken(t *testing.T) {
	fix := newAPIFixture(t, &catalogStub{items: stubItems(2)})
	token := fix.startSession(t)

	rec := fix.do(t, http.MethodPost, "/api/sessions/submit", token, `{"score":5}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = fix.do(t, http.MethodPost, "/api/sessions/reset", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Token     string `json:"token"`
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec)["session"], &envelope))
	require.NotEmpty(t, envelope.Token)

	oldID, err := fix.tokens.Parse(token)
	require.NoError(t, err)
	assert.NotEqual(t, oldID, envelope.SessionID)

	// the old session is gone
	rec = fix.do(t, http.MethodGet, "/api/sessions/progress", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// the new one starts from scratch
	rec = fix.do(t, http.MethodGet, "/api/sessions/progress", envelope.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var progress struct {
		Index     int `json:"index"`
		Evaluated int `json:"evaluated"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec)["progress"], &progress))
	assert.Zero(t, progress.Index)
	assert.Zero(t, progress.Evaluated)
}

func TestUnknownSessionToken(t *testing.T) {
	fix := newAPIFixture(t, &catalogStub{items: stubItems(2)})

	// a validly signed token for a session this server never started
	token, err := fix.tokens.Issue("no-such-session")
	require.NoError(t, err)

	rec := fix.do(t, http.MethodGet, "/api/sessions/current", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_SESSION")
}

func TestAudioStreamProxiesBytes(t *testing.T) {
	fix := newAPIFixture(t, &catalogStub{items: stubItems(1), audio: []byte("RIFFdata")})
	token := fix.startSession(t)

	items := stubItems(1)
	rec := fix.do(t, http.MethodGet, "/api/audio/stream?id="+items[0].AnonymousID, token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "RIFFdata", rec.Body.String())
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
}

func TestAudioStreamUnknownItem(t *testing.T) {
	fix := newAPIFixture(t, &catalogStub{items: stubItems(1)})
	token := fix.startSession(t)

	rec := fix.do(t, http.MethodGet, "/api/audio/stream?id=audio_ffffffff_9", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
