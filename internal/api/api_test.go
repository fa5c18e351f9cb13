package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 5*time.Second)
}

func TestOCR(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/ocr" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["fileId"] != "abc" {
			t.Errorf("fileId = %q, want abc", body["fileId"])
		}
		_, _ = io.WriteString(w, `{"ok":true,"fullText":"The cat sat. It was happy!"}`)
	})

	res, err := client.OCR(context.Background(), "abc")
	if err != nil {
		t.Fatalf("OCR() error = %v", err)
	}
	if res.Text() != "The cat sat. It was happy!" {
		t.Errorf("Text() = %q", res.Text())
	}
}

func TestOCRPreviewFallback(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ok":true,"fullText":"  ","preview":"Short preview."}`)
	})

	res, err := client.OCR(context.Background(), "abc")
	if err != nil {
		t.Fatalf("OCR() error = %v", err)
	}
	if res.Text() != "Short preview." {
		t.Errorf("Text() = %q, want preview", res.Text())
	}
}

func TestOCRNotOK(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"ok":false,"error":"file not found"}`)
	})

	_, err := client.OCR(context.Background(), "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("OCR() error = %v, want *APIError", err)
	}
	if apiErr.Reason != "file not found" || apiErr.Status != http.StatusNotFound {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestNonJSONFailure(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := client.OCR(context.Background(), "abc")
	if !IsAPIError(err) {
		t.Fatalf("OCR() error = %v, want APIError", err)
	}
	if !strings.Contains(err.Error(), "bad gateway") {
		t.Errorf("error %q should carry the body", err)
	}
}

func TestQuiz(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req QuizRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if req.FileID != "abc" || req.Level != "easy" || req.Style != "story" {
			t.Errorf("request = %+v", req)
		}
		_, _ = io.WriteString(w, `{"ok":true,"questions":[
			{"question":"Who sat?","choices":["cat","dog"],"answerIndex":0,"explanation":"The cat sat."}
		]}`)
	})

	qs, err := client.Quiz(context.Background(), QuizRequest{FileID: "abc", Level: "easy", Style: "story"})
	if err != nil {
		t.Fatalf("Quiz() error = %v", err)
	}
	if len(qs) != 1 || qs[0].Question != "Who sat?" || len(qs[0].Choices) != 2 || qs[0].Explanation == "" {
		t.Errorf("questions = %+v", qs)
	}
}

func TestUpload(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/upload" {
			t.Errorf("path = %s", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "page.png" || string(data) != "image-bytes" {
			t.Errorf("got %q with %q", header.Filename, data)
		}
		_, _ = io.WriteString(w, `{"ok":true,"fileId":"f-123"}`)
	})

	id, err := client.Upload(context.Background(), "page.png", strings.NewReader("image-bytes"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if id != "f-123" {
		t.Errorf("fileId = %q, want f-123", id)
	}
}

func TestUploadMissingFileID(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ok":true}`)
	})

	if _, err := client.Upload(context.Background(), "a.pdf", strings.NewReader("x")); !IsAPIError(err) {
		t.Errorf("Upload() error = %v, want APIError", err)
	}
}

func TestContextCancelled(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.OCR(ctx, "abc"); err == nil || IsAPIError(err) {
		t.Errorf("OCR() error = %v, want transport error", err)
	}
}
