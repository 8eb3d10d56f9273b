package lines

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
	"net/textproto"
	"path/filepath"
	"strings"
	"time"
)

// ============================================================
// Extractor Client
// ============================================================

var ErrUnsupportedFormat = errors.New("invalid file format, please upload a PDF or PNG")

// ExtractorClient пересылает план во внешний сервис выделения стен.
type ExtractorClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewExtractorClient(baseURL string, timeout time.Duration) *ExtractorClient {
	return &ExtractorClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// SupportedFile проверяет расширение так же, как внешний сервис.
func SupportedFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".png":
		return true
	}
	return false
}

// Extract отправляет файл как multipart поле "file" и возвращает нормированные линии.
func (c *ExtractorClient) Extract(ctx context.Context, filename string, r io.Reader) ([]Line, error) {
	if !SupportedFile(filename) {
		return nil, ErrUnsupportedFormat
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(filename)))
	h.Set("Content-Type", contentType(filename))

	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	target := c.BaseURL + "/upload"
	log.Printf("[EXTRACT] Forwarding %s (%d bytes) to %s", filename, body.Len(), target)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extractor request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read extractor response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("extractor status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("decode extractor response: %w", err)
	}

	log.Printf("[EXTRACT] Detected %d lines", len(lines))
	return lines, nil
}

func contentType(filename string) string {
	if strings.ToLower(filepath.Ext(filename)) == ".pdf" {
		return "application/pdf"
	}
	return "image/png"
}
