package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Эндпоинты бэкенда аутентификации.
const (
	MePath       = "/api/auth/me"
	LoginPath    = "/api/auth/login"
	RegisterPath = "/api/auth/register"
)

// User: профиль, который возвращает /api/auth/me.
type User struct {
	Username       string `json:"username"`
	IsPro          bool   `json:"is_pro"`
	QuotaRemaining int    `json:"quota_remaining"`
	QuotaLimit     int    `json:"quota_limit"`
}

// StatusError: ответ сервера с кодом вне 2xx.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server status %d", e.Code)
	}
	return fmt.Sprintf("server status %d: %s", e.Code, e.Body)
}

// IsUnauthorized сообщает, что сервер ответил 401.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusUnauthorized
}

// Client ходит в бэкенд аутентификации. Таймауты задаёт HTTP-клиент.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient создаёт клиент для baseURL вида http://host:port.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

// do выполняет запрос и возвращает тело ответа; код вне 2xx превращается в *StatusError.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// Me запрашивает профиль владельца токена.
func (c *Client) Me(ctx context.Context, token string) (User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+MePath, nil)
	if err != nil {
		return User{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	body, err := c.do(req)
	if err != nil {
		return User{}, err
	}
	var u User
	if err := json.Unmarshal(body, &u); err != nil {
		return User{}, fmt.Errorf("decode user: %w", err)
	}
	return u, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Login отправляет логин и пароль multipart-формой и возвращает access token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("username", username); err != nil {
		return "", err
	}
	if err := mw.WriteField("password", password); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+LoginPath, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	body, err := c.do(req)
	if err != nil {
		return "", err
	}
	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if tr.AccessToken == "" {
		return "", errors.New("no access_token in response")
	}
	return tr.AccessToken, nil
}

// RegisterRequest тело запроса регистрации.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register регистрирует пользователя; тело ответа не используется.
func (c *Client) Register(ctx context.Context, username, password string) error {
	_, err := c.PostJSON(ctx, RegisterPath, RegisterRequest{Username: username, Password: password})
	return err
}

// PostJSON отправляет JSON POST на path и возвращает тело ответа.
func (c *Client) PostJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}
