package realitycheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

const maxErrorBody = 64 << 10

// Client is the realitycheck API client. It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	obs     *observer
}

// New creates a client for the API at baseURL (e.g. "http://localhost:8080").
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("realitycheck: invalid base url %q", baseURL)
	}

	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.apiKey,
		http:    hc,
		obs:     obs,
	}, nil
}

// postJSON sends in as a JSON body and decodes a 2xx response into out.
func (c *Client) postJSON(ctx context.Context, cl *call, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("realitycheck: encode request: %w", err)
	}
	return c.do(ctx, cl, http.MethodPost, path, bytes.NewReader(body), "application/json", out)
}

// postFile sends data as the multipart "file" part along with extra form fields.
func (c *Client) postFile(
	ctx context.Context, cl *call, path, filename string, data []byte, fields map[string]string, out any,
) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("realitycheck: write field %s: %w", k, err)
		}
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("realitycheck: create file part: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("realitycheck: write file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("realitycheck: close multipart: %w", err)
	}
	return c.do(ctx, cl, http.MethodPost, path, &buf, mw.FormDataContentType(), out)
}

// do sends the request, charges cl with the reported usage and decodes a 2xx body into out.
func (c *Client) do(
	ctx context.Context, cl *call, method, path string, body io.Reader, contentType string, out any,
) error {
	resp, err := c.send(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	cl.charge(resp.Header)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	return decodeBody(resp, out)
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("realitycheck: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("realitycheck: %s %s: %w", method, path, err)
	}
	return resp, nil
}

func decodeBody(resp *http.Response, out any) error {
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("realitycheck: decode response: %w", err)
	}
	return nil
}

// decodeError turns a non-2xx response into an *APIError. Bodies that are not
// the API's {code,message} shape (proxies, load balancers) keep the raw text.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Code != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
		return apiErr
	}

	apiErr.Code = fallbackCode(resp.StatusCode)
	apiErr.Message = strings.TrimSpace(string(raw))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func fallbackCode(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return "unauthorized"
	case status == http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case status == http.StatusTooManyRequests:
		return "quota_exceeded"
	case status == http.StatusGatewayTimeout:
		return "provider_timeout"
	case status >= 500:
		return "internal_error"
	default:
		return "bad_request"
	}
}

