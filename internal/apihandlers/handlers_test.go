package apihandlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"servicebot/internal/apihandlers"
	"servicebot/internal/app"
	"servicebot/internal/config"
	"servicebot/internal/models"
	"servicebot/internal/services"
	"servicebot/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *app.App) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Database.Driver = "sqlite"
	cfg.Database.SQLite.Path = ":memory:"
	cfg.Classifier.Type = "keyword"
	cfg.Ollama.Host = "http://127.0.0.1:1"
	cfg.Server.CORSOrigins = []string{"http://localhost:5173"}

	a, err := app.NewApp(cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return apihandlers.NewRouter(a), a
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Error apihandlers.APIError `json:"error"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthHandler(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	status := decode[services.HealthStatus](t, w)
	assert.Equal(t, "OK", status.Status)
	assert.True(t, status.DatabaseConnected)
	assert.False(t, status.OllamaConnected)
}

func TestConversationFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/conversations", map[string]string{"initial_message": "I can't log into my account"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[services.CreateConversationResult](t, w)
	assert.Equal(t, "authentication", created.Categorization.Category)
	assert.Equal(t, 0.8, created.Categorization.Confidence)
	assert.Equal(t, "What device are you using? (Desktop, Mobile, Tablet)", created.FollowUpQuestion)
	assert.Equal(t, []string{"device", "browser", "error_message"}, created.CategoryInfo.RequiredFields)

	path := "/api/conversations/" + created.ConversationID + "/messages"
	var last services.AddMessageResult
	for i, answer := range []string{"Desktop", "Firefox", "Invalid password"} {
		w = doJSON(t, r, http.MethodPost, path, map[string]string{"content": answer})
		require.Equal(t, http.StatusOK, w.Code)
		last = decode[services.AddMessageResult](t, w)
		assert.Equal(t, i == 2, last.IsComplete)
		assert.Equal(t, "authentication", last.Category)
	}
	assert.Contains(t, last.Message, "Authentication request has been categorized")

	w = doJSON(t, r, http.MethodPost, path, map[string]string{"content": "hello?"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", decode[errorBody](t, w).Error.Code)

	w = doJSON(t, r, http.MethodGet, "/api/conversations/"+created.ConversationID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[struct {
		Conversation models.Conversation `json:"conversation"`
		Messages     []models.Message    `json:"messages"`
	}](t, w)
	assert.Equal(t, models.ConversationStatusCompleted, detail.Conversation.Status)
	require.Len(t, detail.Messages, 8)
	assert.Equal(t, "I can't log into my account", detail.Messages[0].Content)
	assert.Equal(t, models.SenderBot, detail.Messages[7].Sender)
}

func TestCreateConversation_Blank(t *testing.T) {
	r, a := newTestRouter(t)

	for _, body := range []any{
		map[string]string{"initial_message": "   "},
		map[string]string{},
		nil,
	} {
		w := doJSON(t, r, http.MethodPost, "/api/conversations", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", decode[errorBody](t, w).Error.Code)
	}

	convs, err := a.Store.ListConversations(context.Background(), storeParams())
	require.NoError(t, err)
	assert.Empty(t, convs)
}

func TestAddMessage_Errors(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/conversations/does-not-exist/messages", map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode[errorBody](t, w).Error.Code)

	w = doJSON(t, r, http.MethodPost, "/api/conversations", map[string]string{"initial_message": "billing question"})
	require.Equal(t, http.StatusOK, w.Code)
	created := decode[services.CreateConversationResult](t, w)

	w = doJSON(t, r, http.MethodPost, "/api/conversations/"+created.ConversationID+"/messages", map[string]string{"content": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetConversation_NotFound(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/api/conversations/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Conversation not found", decode[errorBody](t, w).Error.Message)
}

func TestUnknownCategoryIsInternalError(t *testing.T) {
	r, a := newTestRouter(t)
	category := "shipping"
	require.NoError(t, a.Store.CreateConversation(context.Background(), &models.Conversation{ID: "legacy", Category: &category}))

	w := doJSON(t, r, http.MethodPost, "/api/conversations/legacy/messages", map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	e := decode[errorBody](t, w).Error
	assert.Equal(t, "internal_error", e.Code)
	assert.NotContains(t, e.Message, "shipping")
}

func TestListConversationsAndCategories(t *testing.T) {
	r, _ := newTestRouter(t)
	for _, msg := range []string{"payment failed", "app is broken"} {
		w := doJSON(t, r, http.MethodPost, "/api/conversations", map[string]string{"initial_message": msg})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/api/conversations?status=active&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Conversations []models.Conversation `json:"conversations"`
	}](t, w)
	assert.Len(t, list.Conversations, 1)

	w = doJSON(t, r, http.MethodGet, "/api/conversations?status=archived", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(t, r, http.MethodGet, "/api/conversations?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cats := decode[struct {
		Categories []struct {
			Key       string   `json:"key"`
			Questions []string `json:"questions"`
		} `json:"categories"`
	}](t, w)
	require.Len(t, cats.Categories, 5)
	assert.Equal(t, "authentication", cats.Categories[0].Key)
}

func TestCORS(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/conversations", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func storeParams() store.ListConversationsParams {
	return store.ListConversationsParams{Limit: 10}
}
