package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrelay/internal/models"
)

func TestAsk(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/ask", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"answer":"forty-two"}`))
	}))
	defer srv.Close()

	answer, err := New(srv.URL+"/").Ask(context.Background(), "meaning?")
	require.NoError(t, err)
	assert.Equal(t, "forty-two", answer)
	assert.Equal(t, map[string]string{"question": "meaning?"}, got)
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	_, err := New(srv.URL).Ask(context.Background(), "  ")
	assert.ErrorIs(t, err, models.ErrEmptyQuestion)
	assert.Zero(t, calls)
}

func TestErrorPrefersDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"status_code":422,"detail":"collection is empty"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Ask(context.Background(), "q")
	require.Error(t, err)
	var be *Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusUnprocessableEntity, be.StatusCode)
	assert.Equal(t, "collection is empty", Message(err))
	assert.Contains(t, err.Error(), "backend ask")
}

func TestErrorWithoutDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := New(srv.URL).Reset(context.Background())
	require.Error(t, err)
	assert.Equal(t, "request failed with status code 500", Message(err))
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url).ListDocuments(context.Background())
	require.Error(t, err)
	assert.Contains(t, Message(err), "connect")
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	err := New(srv.URL, WithTimeout(50*time.Millisecond)).Reset(context.Background())
	require.Error(t, err)
}

func TestListDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/list", r.URL.Path)
		_, _ = w.Write([]byte(`{"documents":[{"title":"a","type":"text","size":10},{"size":"7"}]}`))
	}))
	defer srv.Close()

	docs, err := New(srv.URL).ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, models.Text("a"), docs[0].Title)
	assert.Equal(t, "7 chars", docs[1].SizeLabel())
}

func TestListDocumentsMissingField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	docs, err := New(srv.URL).ListDocuments(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestUploadText(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/upload", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	require.NoError(t, New(srv.URL).UploadText(context.Background(), "body", "Notes"))
	assert.Equal(t, map[string]string{"text": "body", "title": "Notes"}, got)
}

func TestUploadFile(t *testing.T) {
	staged := filepath.Join(t.TempDir(), "upload-123")
	require.NoError(t, os.WriteFile(staged, []byte("%PDF-1.4 fake"), 0o600))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/upload/pdf", r.URL.Path)
		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		assert.Equal(t, `report "final".pdf`, header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))
		body, _ := io.ReadAll(file)
		assert.Equal(t, "%PDF-1.4 fake", string(body))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := New(srv.URL).UploadFile(context.Background(), models.UploadPDF, &models.TempFile{
		FileName:   `report "final".pdf`,
		StoredPath: staged,
	})
	require.NoError(t, err)
}

func TestUploadFileMissingStagedFile(t *testing.T) {
	err := New("http://127.0.0.1:1").UploadFile(context.Background(), models.UploadText, &models.TempFile{
		FileName:   "a.txt",
		StoredPath: filepath.Join(t.TempDir(), "gone"),
	})
	require.Error(t, err)
	assert.Contains(t, Message(err), "open staged file")
}
