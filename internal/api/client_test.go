package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api", WithHTTPClient(srv.Client()), WithImageHost(srv.URL)), srv
}

func TestClient_Status(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/status", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		io.WriteString(w, `{
			"dependencies": {"stable_diffusion": {"installed": true, "progress": 100, "message": "Installed"}},
			"models": {"anime_model": {"installed": false, "progress": 40, "message": "Downloading"}},
			"overall_status": {"ready": false, "progress": 70, "message": "Installing"}
		}`)
	})

	s, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, s.Ready())
	assert.Equal(t, 70.0, s.Overall.Progress)
	require.Len(t, s.Dependencies, 1)
	assert.Equal(t, "stable_diffusion", s.Dependencies[0].Name)
	assert.True(t, s.Dependencies[0].Installed)
	require.Len(t, s.Models, 1)
	assert.Equal(t, "anime_model", s.Models[0].Name)
	assert.Equal(t, "Downloading", s.Models[0].Message)
}

func TestClient_Install(t *testing.T) {
	var gotType string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/dependencies/install", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotType = body["type"]
		io.WriteString(w, `{"success": true, "message": "Installation started"}`)
	})

	ack, err := c.Install(context.Background(), ScopeModels)
	require.NoError(t, err)
	assert.True(t, ack.Success)
	assert.Equal(t, "models", gotType)
}

func TestClient_InstallInvalidScopeIssuesNoRequest(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	_, err := c.Install(context.Background(), InstallScope("everything"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidScope))
	assert.Zero(t, calls.Load())
}

func TestClient_ListCharacters(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/characters", r.URL.Path)
		io.WriteString(w, `[
			{"id": "a", "description": "red hair", "created_at": "2025-01-01T10:00:00.000001",
			 "updated_at": "2025-01-01T10:00:00.000001", "image_url": "/uploads/characters/a.png",
			 "references": ["/uploads/characters/a_reference.png"]}
		]`)
	})

	chars, err := c.ListCharacters(context.Background())
	require.NoError(t, err)
	require.Len(t, chars, 1)
	assert.Equal(t, "a", chars[0].ID)
	assert.Equal(t, "/uploads/characters/a_reference.png", chars[0].FirstReference())
	assert.False(t, chars[0].CreatedAt.IsZero())
	assert.False(t, chars[0].WasUpdated())
}

func TestClient_ListCharactersEmpty(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	})
	chars, err := c.ListCharacters(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, chars)
	assert.Empty(t, chars)
}

func TestClient_CreateCharacterMultipart(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "green eyes", r.FormValue("description"))
		f, hdr, err := r.FormFile("reference_image")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "ref.png", hdr.Filename)
		assert.Equal(t, "PNGDATA", string(data))
		io.WriteString(w, `{"id": "new", "description": "green eyes"}`)
	})

	ch, err := c.CreateCharacter(context.Background(), CharacterInput{
		Description: "green eyes",
		Image:       &ImageUpload{Filename: "/tmp/pics/ref.png", Content: strings.NewReader("PNGDATA")},
	})
	require.NoError(t, err)
	assert.Equal(t, "new", ch.ID)
}

func TestClient_CreateCharacterWithoutImage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "plain", r.FormValue("description"))
		_, _, err := r.FormFile("reference_image")
		assert.ErrorIs(t, err, http.ErrMissingFile)
		io.WriteString(w, `{"id": "x"}`)
	})

	_, err := c.CreateCharacter(context.Background(), CharacterInput{Description: "plain"})
	require.NoError(t, err)
}

func TestClient_UpdateCharacterUsesNewImageField(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/characters/abc", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, _, err := r.FormFile("new_image")
		assert.NoError(t, err)
		_, _, err = r.FormFile("reference_image")
		assert.Error(t, err)
		io.WriteString(w, `{"id": "abc", "description": "edited"}`)
	})

	ch, err := c.UpdateCharacter(context.Background(), "abc", CharacterInput{
		Description: "edited",
		Image:       &ImageUpload{Filename: "new.png", Content: strings.NewReader("x")},
	})
	require.NoError(t, err)
	assert.Equal(t, "edited", ch.Description)
}

func TestClient_DeleteCharacterNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error": "Character not found"}`)
	})

	err := c.DeleteCharacter(context.Background(), "missing")
	require.Error(t, err)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Character not found", apiErr.Message)
	assert.True(t, IsNotFound(err))
}

func TestClient_CreateScene(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/scenes", r.URL.Path)
		var req SceneRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "c1", req.CharacterID)
		assert.Equal(t, "walks in the park", req.PlotDescription)
		io.WriteString(w, `{"id": "s1", "character_id": "c1", "plot_description": "walks in the park",
			"image_url": "/uploads/scenes/s1.png", "created_at": "2025-02-01T08:00:00"}`)
	})

	s, err := c.CreateScene(context.Background(), SceneRequest{CharacterID: "c1", PlotDescription: "walks in the park"})
	require.NoError(t, err)
	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, "2025-02-01T08:00:00", s.CreatedAt.Raw)
}

func TestClient_ServerErrorWithoutJSONBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Status(context.Background())
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Internal Server Error", apiErr.Message)
}

func TestClient_TransportError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1/api")
	_, err := c.ListCharacters(context.Background())
	require.Error(t, err)
	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
}

func TestClient_ImageURL(t *testing.T) {
	c := NewClient("", WithImageHost("http://img.local:5000/"))
	assert.Equal(t, "http://img.local:5000/uploads/a.png", c.ImageURL("/uploads/a.png"))
	assert.Equal(t, "http://img.local:5000/uploads/a.png", c.ImageURL("uploads/a.png"))
	assert.Equal(t, "https://cdn.example/a.png", c.ImageURL("https://cdn.example/a.png"))
	assert.Equal(t, "", c.ImageURL(""))
}

func TestClient_ProbeImage(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		if r.URL.Path == "/uploads/ok.png" {
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	assert.NoError(t, c.ProbeImage(context.Background(), srv.URL+"/uploads/ok.png"))
	err := c.ProbeImage(context.Background(), srv.URL+"/uploads/missing.png")
	assert.True(t, IsNotFound(err))
}

func TestParseInstallScope(t *testing.T) {
	s, err := ParseInstallScope("")
	require.NoError(t, err)
	assert.Equal(t, ScopeAll, s)

	s, err = ParseInstallScope("dependencies")
	require.NoError(t, err)
	assert.Equal(t, ScopeDependencies, s)

	_, err = ParseInstallScope("gpu")
	assert.ErrorIs(t, err, ErrInvalidScope)
}

func TestClient_RecordsSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/characters" {
			io.WriteString(w, `[]`)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error": "Failed to generate scene"}`)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL+"/api", WithHTTPClient(srv.Client()), WithTracer(tp.Tracer("test")))

	_, err := c.ListCharacters(context.Background())
	require.NoError(t, err)
	_, err = c.CreateScene(context.Background(), SceneRequest{CharacterID: "c", PlotDescription: "p"})
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "list characters", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, "create scene", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
