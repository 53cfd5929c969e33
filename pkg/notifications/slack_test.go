package notifications

import (
	"context"
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookPost(t *testing.T) {
	var gotContentType, gotMethod, gotAgent string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotAgent = r.Header.Get("User-Agent")
		gotBody, _ = ioutil.ReadAll(r.Body)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	msg := NewDeploymentMessage("#deploys", testReport())
	webhook := &Webhook{URL: server.URL, UserAgent: "deploy-notifier/test"}
	err := webhook.Post(context.Background(), msg)
	require.NoError(t, err)

	payload, _ := msg.Payload()
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "deploy-notifier/test", gotAgent)
	assert.JSONEq(t, string(payload), string(gotBody))
}

func TestWebhookRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"bad channel"}`))
	}))
	defer server.Close()

	webhook := &Webhook{URL: server.URL}
	err := webhook.Post(context.Background(), NewDeploymentMessage("#nope", testReport()))
	require.Error(t, err)

	var rejected *RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, http.StatusInternalServerError, rejected.StatusCode)
	assert.Equal(t, `{"error":"bad channel"}`, rejected.Body)
	assert.Contains(t, err.Error(), `{"error":"bad channel"}`)
}

func TestWebhookTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	webhook := &Webhook{URL: url, Client: &http.Client{Timeout: time.Second}}
	err := webhook.Post(context.Background(), NewDeploymentMessage("#deploys", testReport()))
	require.Error(t, err)

	var rejected *RejectedError
	assert.False(t, errors.As(err, &rejected))
	assert.Contains(t, err.Error(), "could not post to webhook")
}

func TestWebhookTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	webhook := &Webhook{URL: server.URL, Client: &http.Client{Timeout: 100 * time.Millisecond}}
	err := webhook.Post(context.Background(), NewDeploymentMessage("#deploys", testReport()))
	assert.Error(t, err)
}
