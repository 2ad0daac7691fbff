package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vishnukanth5457/joinup/internal/apierr"
	"github.com/vishnukanth5457/joinup/internal/config"
	"github.com/vishnukanth5457/joinup/internal/metrics"
)

const maxBodyBytes = 4 << 20

// Client sends requests to the event service. It holds no session state:
// every call receives the token captured by the caller at call time.
type Client struct {
	baseURL string
	http    *http.Client
	log     logrus.FieldLogger
	metrics *metrics.Gateway
}

func New(cfg config.Config, logger logrus.FieldLogger, m *metrics.Gateway) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.APIURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     logger.WithField("component", "gateway"),
		metrics: m,
	}
}

type request struct {
	endpoint string
	method   string
	path     string
	token    string
	body     interface{}
}

func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	start := time.Now()
	err := c.send(ctx, req, out)
	c.metrics.Observe(req.endpoint, outcome(err), time.Since(start))
	return err
}

func (c *Client) send(ctx context.Context, req request, out interface{}) error {
	var payload io.Reader
	if req.body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(req.body); err != nil {
			return apierr.Validation(fmt.Sprintf("invalid request body: %v", err))
		}
		payload = &buf
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, payload)
	if err != nil {
		return apierr.Validation(fmt.Sprintf("invalid request: %v", err))
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.WithFields(logrus.Fields{"endpoint": req.endpoint}).WithError(err).Debug("request failed")
		return apierr.Network(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return apierr.Network(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.classify(req.endpoint, resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &apierr.Error{Kind: apierr.KindServer, Status: resp.StatusCode, Message: "malformed response from server", Err: err}
	}
	return nil
}

func (c *Client) classify(endpoint string, status int, body []byte) error {
	message := detailMessage(body)
	fields := logrus.Fields{"endpoint": endpoint, "status": status}

	var kind apierr.Kind
	switch {
	case status == http.StatusUnauthorized:
		c.metrics.AuthFailure()
		c.log.WithFields(fields).Warn("request rejected as unauthorized")
		kind = apierr.KindAuth
	case status == http.StatusForbidden:
		kind = apierr.KindAuth
	case status == http.StatusConflict:
		kind = apierr.KindConflict
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		kind = apierr.KindValidation
	default:
		c.log.WithFields(fields).Warn("server error")
		kind = apierr.KindServer
	}
	if message == "" {
		message = defaultMessage(kind, status)
	}
	return &apierr.Error{Kind: kind, Status: status, Message: message}
}

// detailMessage extracts the service's {"detail": ...} message. Request
// validation failures carry a list of {"msg": ...} objects instead of a string.
func detailMessage(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if len(envelope.Detail) == 0 {
		return envelope.Error
	}
	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func defaultMessage(kind apierr.Kind, status int) string {
	switch kind {
	case apierr.KindAuth:
		return "not authorized"
	case apierr.KindValidation:
		return "invalid request"
	case apierr.KindConflict:
		return "conflict"
	}
	return fmt.Sprintf("server error (%d)", status)
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		return string(apiErr.Kind)
	}
	return "unknown"
}
