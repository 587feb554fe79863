package alerts_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/alerts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTelegramAPI(t *testing.T, sent *[]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"vcg","username":"vcg_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "42", r.PostForm.Get("chat_id"))
			*sent = append(*sent, r.PostForm.Get("text"))
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":1700000000,"chat":{"id":42,"type":"private"}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestTelegramNotifier_Send(t *testing.T) {
	var sent []string
	api := newTelegramAPI(t, &sent)

	n, err := alerts.NewTelegramNotifier("123:token", 42, api.URL+"/bot%s/%s")
	require.NoError(t, err)
	assert.Equal(t, "telegram", n.Name())

	require.NoError(t, n.Send(context.Background(), testAlert()))
	require.Len(t, sent, 1)
	assert.True(t, strings.HasPrefix(sent[0], "Hypervault HYPE capacity < 2.0M\n\n"))
	assert.Contains(t, sent[0], "500.0K")
}

func TestTelegramNotifier_CancelledContext(t *testing.T) {
	var sent []string
	api := newTelegramAPI(t, &sent)

	n, err := alerts.NewTelegramNotifier("123:token", 42, api.URL+"/bot%s/%s")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.Send(ctx, testAlert()), context.Canceled)
	assert.Empty(t, sent)
}

func TestNewTelegramNotifier_BadToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
	}))
	defer server.Close()

	_, err := alerts.NewTelegramNotifier("bad", 42, server.URL+"/bot%s/%s")
	assert.Error(t, err)
}
