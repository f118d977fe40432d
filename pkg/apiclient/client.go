// Package apiclient 是 FreeArk 后端 REST 接口的客户端，供命令行工具使用。
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrUnauthorized 服务端返回 401，本地会话已被清除，需要重新登录。
var ErrUnauthorized = errors.New("unauthorized: please login again")

// APIError 是非 2xx 响应。
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// Config 是客户端参数。BaseURL 已包含 /api 前缀。
type Config struct {
	BaseURL string
	Timeout time.Duration
	// AuthScheme 是 Authorization 头的前缀，例如 Bearer 或 Token。
	AuthScheme string
}

// Client 在每个请求上附带会话中的令牌，收到 401 时清除会话。
type Client struct {
	http    *resty.Client
	session Session
}

func New(cfg Config, session Session) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}
	if session == nil {
		session = &MemorySession{}
	}

	c := &Client{session: session}
	c.http = resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			if tok := session.Token(); tok != "" {
				r.SetHeader("Authorization", cfg.AuthScheme+" "+tok)
			}
			return nil
		})
	return c
}

// Session 返回客户端使用的会话。
func (c *Client) Session() Session {
	return c.session
}

// envelope 是服务端统一的响应格式。
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Detail  string          `json:"detail"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		_ = c.session.Clear()
		return ErrUnauthorized
	}
	raw := resp.Body()
	if resp.IsError() {
		var env envelope
		_ = json.Unmarshal(raw, &env)
		msg := env.Message
		if msg == "" {
			msg = env.Detail
		}
		return &APIError{Status: resp.StatusCode(), Message: msg}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(unwrap(raw), out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// unwrap 对 {"code","message","data"} 格式取 data，其他格式原样返回。
func unwrap(raw []byte) []byte {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return raw
	}
	data, ok := probe["data"]
	if !ok {
		return raw
	}
	if _, hasCode := probe["code"]; !hasCode {
		return raw
	}
	return data
}

func idPath(id uint) string {
	return "/users/" + strconv.FormatUint(uint64(id), 10)
}
