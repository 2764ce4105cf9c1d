package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaddleRecognizeText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Images []string `json:"images"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Images, 1)
		decoded, err := base64.StdEncoding.DecodeString(body.Images[0])
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(decoded))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Write([]byte(`{"results":[[{"text":"Name: Rahul","confidence":0.98},{"text":"NAME: RAHUL","confidence":0.7},{"text":" ","confidence":0.1},{"text":"DOB: 15/08/1995","confidence":0.95}]]}`))
	}))
	defer server.Close()

	p := NewPaddleClient(server.URL)
	text, err := p.RecognizeText(context.Background(), []byte("png-bytes"))

	require.NoError(t, err)
	assert.Equal(t, "Name: Rahul\nDOB: 15/08/1995", text)
	assert.Equal(t, "paddle", p.Name())
}

func TestPaddleRecognizeTextErrors(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer failing.Close()

	_, err := NewPaddleClient(failing.URL).RecognizeText(context.Background(), []byte("x"))
	assert.ErrorContains(t, err, "status 503")

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))
	defer empty.Close()

	_, err = NewPaddleClient(empty.URL).RecognizeText(context.Background(), []byte("x"))
	assert.ErrorContains(t, err, "no text")
}
