package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"servicebot/internal/chatclient"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunChat(t *testing.T) {
	color.NoColor = true

	replies := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/conversations":
			_, _ = w.Write([]byte(`{"conversation_id":"c1","categorization":{"category":"billing","confidence":0.8},"follow_up_question":"What is your account email?"}`))
		case "/api/conversations/c1/messages":
			replies++
			_, _ = w.Write([]byte(`{"message":"Thank you! All set.","is_complete":true,"category":"billing"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	session := chatclient.NewSession(chatclient.NewClient(srv.URL+"/api", time.Second))
	in := strings.NewReader("I was charged twice\nme@example.com\nmore?\n/new\n/quit\nnever read\n")
	var out bytes.Buffer

	require.NoError(t, runChat(context.Background(), session, in, &out))

	text := out.String()
	assert.Equal(t, 2, strings.Count(text, chatclient.Greeting))
	assert.Contains(t, text, "bot> What is your account email?")
	assert.Contains(t, text, "[category: billing, confidence: 80%]")
	assert.Contains(t, text, "bot> Thank you! All set.")
	assert.Contains(t, text, "This conversation is complete.")
	assert.Equal(t, 1, replies)
	assert.Empty(t, session.ConversationID())
}

func TestRunChat_ServerDown(t *testing.T) {
	color.NoColor = true

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	session := chatclient.NewSession(chatclient.NewClient(url+"/api", time.Second))
	var out bytes.Buffer
	require.NoError(t, runChat(context.Background(), session, strings.NewReader("help\n"), &out))
	assert.Contains(t, out.String(), chatclient.ConnectionError)
}
