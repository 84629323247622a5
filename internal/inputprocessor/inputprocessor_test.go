package inputprocessor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_Raw(t *testing.T) {
	res, err := New(nil).Process(context.Background(), "I can't log into my account")
	require.NoError(t, err)
	assert.Equal(t, SourceRaw, res.Source)
	assert.Equal(t, "I can't log into my account", res.Body)
}

func TestProcess_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticket.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>My invoice is wrong</p>"), 0o644))

	res, err := New(nil).Process(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, SourceFile, res.Source)
	assert.Equal(t, path, res.Location)
	assert.Contains(t, res.ContentType, "text/html")
	assert.Equal(t, "<p>My invoice is wrong</p>", res.Body)
}

func TestProcess_Stdin(t *testing.T) {
	res, err := New(strings.NewReader("payment failed\n")).Process(context.Background(), "-")
	require.NoError(t, err)
	assert.Equal(t, SourceStdin, res.Source)
	assert.Equal(t, "payment failed\n", res.Body)
}

func TestProcess_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("the app crashes on start"))
	}))
	defer srv.Close()

	res, err := New(nil).Process(context.Background(), srv.URL+"/ticket")
	require.NoError(t, err)
	assert.Equal(t, SourceURL, res.Source)
	assert.Equal(t, "text/plain", res.ContentType)
	assert.Equal(t, "the app crashes on start", res.Body)

	_, err = New(nil).Process(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
