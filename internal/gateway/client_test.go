package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/nlp", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"command":"test"}`, string(body))

		w.Write([]byte(`{"response":"ok"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	raw, err := client.Call(context.Background(), http.MethodPost, "/nlp", map[string]string{"command": "test"}, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"response":"ok"}`, string(raw))
}

func TestCallQueryAndEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "piece", r.URL.Query().Get("type"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	raw, err := client.Call(context.Background(), http.MethodGet, "/image_recognition", nil,
		url.Values{"type": []string{"piece"}})
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage("{}"), raw, "пустое тело нормализуется в пустой объект")
}

func TestCallStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	_, err := client.Call(context.Background(), http.MethodGet, "/obd2", nil, nil)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.JSONEq(t, `{"error":"boom"}`, string(statusErr.Body))
}

func TestCallUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := New(srv.URL, 100*time.Millisecond)
	_, err := client.Call(context.Background(), http.MethodGet, "/obd2", nil, nil)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestCallMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "carte.jpg", header.Filename)
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "fake image bytes", string(content))

		w.Write([]byte(`{"vehicle_info":{"marque":"Renault"}}`))
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	raw, err := client.CallMultipart(context.Background(), "/ocr", "image", "carte.jpg",
		strings.NewReader("fake image bytes"), nil)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Renault")
}

func TestCallContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := New(srv.URL, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Call(ctx, http.MethodGet, "/obd2", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreachable))
}
