package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestProcess_SendsMultipartFile(t *testing.T) {
	var (
		gotPath     string
		gotMethod   string
		gotFilename string
		gotData     []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method

		f, fh, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		gotFilename = fh.Filename
		gotData, _ = io.ReadAll(f)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"annotated_image_url":"https://x/1.png","report":"# Findings\nNo caries."}`))
	}))
	defer server.Close()

	client := NewClient(server.URL + "/")
	resp, err := client.Process(context.Background(), &SelectedFile{Name: "xray1.png", Data: []byte("pixels")})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %s, want POST", gotMethod)
	}
	if gotPath != "/process" {
		t.Errorf("path = %s, want /process", gotPath)
	}
	if gotFilename != "xray1.png" {
		t.Errorf("filename = %q, want xray1.png", gotFilename)
	}
	if string(gotData) != "pixels" {
		t.Errorf("payload = %q, want %q", gotData, "pixels")
	}

	if resp.AnnotatedImageURL == nil || *resp.AnnotatedImageURL != "https://x/1.png" {
		t.Errorf("AnnotatedImageURL = %v", resp.AnnotatedImageURL)
	}
	if resp.ReportOrEmpty() != "# Findings\nNo caries." {
		t.Errorf("Report = %q", resp.ReportOrEmpty())
	}
}

func TestProcess_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Process(context.Background(), &SelectedFile{Name: "a.png", Data: []byte("x")})
	if err == nil {
		t.Fatal("expected error for status 500")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", apiErr.StatusCode)
	}
	if apiErr.Message != "boom" {
		t.Errorf("Message = %q, want boom", apiErr.Message)
	}
}

func TestProcess_LongErrorBodyKeepsUTF8(t *testing.T) {
	body := "a" + strings.Repeat("错", 300)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(body))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Process(context.Background(), &SelectedFile{Name: "a.png", Data: []byte("x")})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if !utf8.ValidString(apiErr.Message) {
		t.Errorf("Message is not valid UTF-8: %q", apiErr.Message)
	}
	if !strings.HasSuffix(apiErr.Message, "...") {
		t.Errorf("Message should be truncated: %q", apiErr.Message)
	}
	if len(apiErr.Message) > maxErrorBody+len("...") {
		t.Errorf("Message length = %d, exceeds limit", len(apiErr.Message))
	}
}

func TestTruncateBody(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"abcdef", 3, "abc..."},
		{"a错错", 2, "a..."},
		{"a错错", 4, "a错..."},
	}
	for _, tt := range tests {
		if got := truncateBody([]byte(tt.in), tt.limit); got != tt.want {
			t.Errorf("truncateBody(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestProcess_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Process(context.Background(), &SelectedFile{Name: "a.png", Data: []byte("x")})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestProcess_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url)
	if _, err := client.Process(context.Background(), &SelectedFile{Name: "a.png"}); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestProcess_NilFile(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	if _, err := client.Process(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil file")
	}
}

func TestFetchImage_RelativeURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/1.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("png-bytes"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	data, err := client.FetchImage(context.Background(), "/images/1.png")
	if err != nil {
		t.Fatalf("FetchImage failed: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("data = %q", data)
	}

	if _, err := client.FetchImage(context.Background(), "/images/missing.png"); err == nil {
		t.Error("expected error for 404")
	}
}

func TestResolveURL(t *testing.T) {
	client := NewClient("http://localhost:8000/api/")

	tests := []struct {
		ref  string
		want string
	}{
		{"https://x/1.png", "https://x/1.png"},
		{"/images/a.png", "http://localhost:8000/images/a.png"},
		{"images/a.png", "http://localhost:8000/api/images/a.png"},
	}
	for _, tt := range tests {
		got, err := client.ResolveURL(tt.ref)
		if err != nil {
			t.Errorf("ResolveURL(%q) error: %v", tt.ref, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveURL(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestLoadSelectedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xray1.png")
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := LoadSelectedFile(path)
	if err != nil {
		t.Fatalf("LoadSelectedFile failed: %v", err)
	}
	if f.Name != "xray1.png" || string(f.Data) != "data" {
		t.Errorf("unexpected file: %+v", f)
	}

	if _, err := LoadSelectedFile(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}
