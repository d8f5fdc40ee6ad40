package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const (
	// HoneypotField must stay empty; bots tend to fill it in
	HoneypotField = "bot-field"
	// FormNameField tells the form host which form a submission belongs to
	FormNameField = "form-name"
)

// ErrTransport is returned when a submission could not be delivered
var ErrTransport = errors.New("submission transport failed")

// Submitter delivers a flat set of form fields to an external endpoint.
// Implementations do not inspect the response body.
type Submitter interface {
	Submit(ctx context.Context, fields map[string]string) error
}

// ScriptClient posts join applications to the script endpoint as a JSON body sent as plain text
type ScriptClient struct {
	client   *http.Client
	endpoint string
	logger   *zap.Logger
}

// NewScriptClient creates a client for the join submission endpoint.
// Requests have no timeout and are not retried.
func NewScriptClient(endpoint string, logger *zap.Logger) *ScriptClient {
	return &ScriptClient{
		client:   &http.Client{},
		endpoint: endpoint,
		logger:   logger,
	}
}

// Submit sends the fields as a single POST
func (c *ScriptClient) Submit(ctx context.Context, fields map[string]string) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode submission: %w", err)
	}

	return post(ctx, c.client, c.logger, c.endpoint, "text/plain;charset=utf-8", bytes.NewReader(body))
}

// FormHostClient posts contact inquiries to a form-hosting backend using urlencoded form semantics
type FormHostClient struct {
	client   *http.Client
	endpoint string
	formName string
	logger   *zap.Logger
}

// NewFormHostClient creates a client for the contact form backend
func NewFormHostClient(endpoint, formName string, logger *zap.Logger) *FormHostClient {
	return &FormHostClient{
		client:   &http.Client{},
		endpoint: endpoint,
		formName: formName,
		logger:   logger,
	}
}

// Submit sends the fields with the form name and an empty honeypot field
func (c *FormHostClient) Submit(ctx context.Context, fields map[string]string) error {
	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}
	values.Set(FormNameField, c.formName)
	values.Set(HoneypotField, "")

	return post(ctx, c.client, c.logger, c.endpoint, "application/x-www-form-urlencoded", strings.NewReader(values.Encode()))
}

// post performs one POST. The request is detached from the caller's cancellation so
// a submission, once issued, runs to completion.
func post(ctx context.Context, client *http.Client, logger *zap.Logger, endpoint, contentType string, body io.Reader) error {
	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	// The endpoint's answer is not part of the contract; a non-2xx status may be a
	// soft failure, so leave a trace of it.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn("submission endpoint returned non-success status",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode))
	}

	return nil
}
