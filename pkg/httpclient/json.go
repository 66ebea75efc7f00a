package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/ThomasMo54/teaching-shop-example/pkg/errors"
)

// Doer is satisfied by Client and BreakerClient.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// DoJSON sends in (if non-nil) as JSON and decodes a 2xx body into out (if
// non-nil). Non-2xx responses become errors via ParseResponseError.
func DoJSON(ctx context.Context, d Doer, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.Do(ctx, req)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ParseResponseError(resp, req.URL.Host)
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type errorBody struct {
	Error json.RawMessage `json:"error"`
}

type errorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

// ParseResponseError consumes and closes resp.Body and returns an AppError
// carrying the remote code and message when the body is a standard error
// envelope. Bodies like {"error": "text"} keep their text as the message.
func ParseResponseError(resp *http.Response, remote string) error {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned %d (read body: %w)", remote, resp.StatusCode, err)
	}

	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil && len(eb.Error) > 0 {
		var env errorEnvelope
		if json.Unmarshal(eb.Error, &env) == nil && env.Code != "" {
			return &apperrors.AppError{
				Code:    env.Code,
				Message: fmt.Sprintf("%s: %s", remote, env.Message),
				Status:  resp.StatusCode,
				Err:     sentinelFor(resp.StatusCode),
			}
		}
		var text string
		if json.Unmarshal(eb.Error, &text) == nil {
			return &apperrors.AppError{
				Code:    http.StatusText(resp.StatusCode),
				Message: fmt.Sprintf("%s: %s", remote, text),
				Status:  resp.StatusCode,
				Err:     sentinelFor(resp.StatusCode),
			}
		}
	}
	return fmt.Errorf("%s returned %d: %s", remote, resp.StatusCode, raw)
}

func sentinelFor(status int) error {
	switch status {
	case http.StatusNotFound:
		return apperrors.ErrNotFound
	case http.StatusConflict:
		return apperrors.ErrAlreadyExists
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperrors.ErrInvalidInput
	case http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case http.StatusForbidden:
		return apperrors.ErrForbidden
	case http.StatusTooManyRequests:
		return apperrors.ErrRateLimited
	default:
		return apperrors.ErrServiceUnavail
	}
}
