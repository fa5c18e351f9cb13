// Package api talks to the reading backend's OCR, quiz and upload endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIError is an {ok: false} reply, or a non-JSON failure, from the backend.
type APIError struct {
	Endpoint string
	Status   int
	Reason   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Reason)
}

func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// Question is one multiple-choice comprehension item.
type Question struct {
	Question    string   `json:"question"`
	Choices     []string `json:"choices"`
	AnswerIndex int      `json:"answerIndex"`
	Explanation string   `json:"explanation,omitempty"`
}

type QuizRequest struct {
	FileID string `json:"fileId"`
	Level  string `json:"level,omitempty"`
	Style  string `json:"style,omitempty"`
}

// OCRResult is the text extracted for a file.
type OCRResult struct {
	FullText string `json:"fullText"`
	Preview  string `json:"preview"`
}

// Text is the passage text, falling back to the preview when the full text
// is missing.
func (r OCRResult) Text() string {
	if strings.TrimSpace(r.FullText) != "" {
		return r.FullText
	}
	return r.Preview
}

type envelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) OCR(ctx context.Context, fileID string) (OCRResult, error) {
	var resp struct {
		envelope
		OCRResult
	}
	if err := c.postJSON(ctx, "/api/ocr", map[string]string{"fileId": fileID}, &resp); err != nil {
		return OCRResult{}, err
	}
	return resp.OCRResult, nil
}

func (c *Client) Quiz(ctx context.Context, req QuizRequest) ([]Question, error) {
	var resp struct {
		envelope
		Questions []Question `json:"questions"`
	}
	if err := c.postJSON(ctx, "/api/quiz", req, &resp); err != nil {
		return nil, err
	}
	return resp.Questions, nil
}

// Upload posts a document as multipart form data and returns its fileId.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("copy file data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	var resp struct {
		envelope
		FileID string `json:"fileId"`
	}
	if err := c.do(ctx, "/api/upload", writer.FormDataContentType(), &body, &resp); err != nil {
		return "", err
	}
	if resp.FileID == "" {
		return "", &APIError{Endpoint: "/api/upload", Status: http.StatusOK, Reason: "response missing fileId"}
	}
	return resp.FileID, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out interface{ result() envelope }) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, path, "application/json", bytes.NewReader(data), out)
}

func (c *Client) do(ctx context.Context, path, contentType string, body io.Reader, out interface{ result() envelope }) error {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("build url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s read response: %w", path, err)
	}
	log.Printf("api: %s -> %d in %v", path, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if err := json.Unmarshal(raw, out); err != nil {
		reason := strings.TrimSpace(string(raw))
		if reason == "" {
			reason = http.StatusText(resp.StatusCode)
		}
		return &APIError{Endpoint: path, Status: resp.StatusCode, Reason: reason}
	}

	env := out.result()
	if !env.OK {
		reason := env.Error
		if reason == "" {
			reason = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return &APIError{Endpoint: path, Status: resp.StatusCode, Reason: reason}
	}
	return nil
}

func (e envelope) result() envelope { return e }
