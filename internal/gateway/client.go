// Package gateway реализует единый HTTP-клиент к бэкенду ассистента.
//
// Каждое представление вызывает ровно одну конечную точку бэкенда через
// Call или CallMultipart и получает сырое JSON-тело либо ошибку. Клиент
// не делает повторов и не переопределяет таймаут на вызов.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnreachable транспортная ошибка: бэкенд недоступен.
var ErrUnreachable = errors.New("backend unreachable")

// StatusError ответ бэкенда с кодом вне диапазона 2xx.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Caller описывает контракт клиента для обработчиков и сервисов.
type Caller interface {
	Call(ctx context.Context, method, path string, body any, query url.Values) (json.RawMessage, error)
	CallMultipart(ctx context.Context, path, field, filename string, file io.Reader, query url.Values) (json.RawMessage, error)
}

// Client шлюз к бэкенду ассистента.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New создает клиент с базовым адресом бэкенда и таймаутом на запрос.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Call выполняет запрос с JSON-телом и возвращает сырое JSON-тело ответа.
// На транспортной ошибке возвращается ошибка, оборачивающая ErrUnreachable;
// на статусе вне 2xx — *StatusError с телом ответа.
func (c *Client) Call(ctx context.Context, method, path string, body any, query url.Values) (json.RawMessage, error) {
	const op = "gateway.Call"
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, query), &buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req)
}

// CallMultipart отправляет файл одной частью multipart-формы.
// Используется модулями OCR и распознавания изображений.
func (c *Client) CallMultipart(ctx context.Context, path, field, filename string, file io.Reader, query url.Values) (json.RawMessage, error) {
	const op = "gateway.CallMultipart"
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(path, query), &buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.do(req)
}

func (c *Client) buildURL(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{Code: resp.StatusCode, Body: data}
	}
	if len(data) == 0 {
		return json.RawMessage("{}"), nil
	}
	return json.RawMessage(data), nil
}
