// Package gateway speaks the WebGW asynchronous task protocol: one HTTP
// POST per call, uniform request wrapping, and normalization of the
// gateway's several response envelope generations.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"uniaudio/internal/artifact"
)

const (
	callSubmit   = "submit_task"
	callPoll     = "poll_task"
	callGetAudio = "get_audio"

	wireVersion = "2.0"
)

// Config carries the gateway endpoint, credentials, and the per-call-kind
// HTTP timeouts.
type Config struct {
	URL    string
	APIKey string
	AppID  string

	SubmitTimeout   time.Duration
	PollTimeout     time.Duration
	DownloadTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.SubmitTimeout == 0 {
		c.SubmitTimeout = 30 * time.Second
	}
	if c.PollTimeout == 0 {
		c.PollTimeout = 30 * time.Second
	}
	if c.DownloadTimeout == 0 {
		c.DownloadTimeout = 60 * time.Second
	}
}

// Client is a WebGW gateway client. It is safe for concurrent use.
type Client struct {
	cfg    Config
	http   *http.Client
	codec  *artifact.Codec
	logger *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.applyDefaults()
	return &Client{
		cfg:    cfg,
		http:   &http.Client{},
		codec:  artifact.NewCodec(logger),
		logger: logger,
	}
}

type request struct {
	APIKey     string `json:"api_key"`
	APIProject string `json:"api_project"`
	CallName   string `json:"call_name"`
	CallToken  string `json:"call_token"`
	CallArgs   any    `json:"call_args"`
}

// call issues one gateway POST and returns the normalized inner result.
func (c *Client) call(ctx context.Context, callName, project string, args any, timeout time.Duration) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	token := uuid.NewString()
	body, err := json.Marshal(request{
		APIKey:     c.cfg.APIKey,
		APIProject: project,
		CallName:   callName,
		CallToken:  token,
		CallArgs:   args,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", callName, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", callName, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-webgw-appid", c.cfg.AppID)
	req.Header.Set("x-webgw-version", wireVersion)

	c.logger.Debug("gateway call",
		zap.String("call_name", callName),
		zap.String("call_token", token),
		zap.String("api_project", project))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", callName, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s read response: %w", callName, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: gateway returned HTTP %d", callName, resp.StatusCode)
	}
	return normalizeEnvelope(callName, respBody)
}

// Submit creates a remote task and returns its gateway-assigned id.
func (c *Client) Submit(ctx context.Context, args map[string]any, project string) (string, error) {
	inner, err := c.call(ctx, callSubmit, project, args, c.cfg.SubmitTimeout)
	if err != nil {
		return "", err
	}
	id, err := extractTaskID(inner)
	if err != nil {
		return "", err
	}
	c.logger.Info("task submitted",
		zap.String("task_id", id),
		zap.String("api_project", project))
	return id, nil
}

// Poll issues exactly one poll call. Transport errors, malformed envelopes
// and success=false responses are reported as still-pending with a warning;
// the caller's tick loop simply polls again. An explicit failed status is
// terminal and carried in the returned status, never as an error.
func (c *Client) Poll(ctx context.Context, taskID, project string) (Status, map[string]any, error) {
	inner, err := c.call(ctx, callPoll, project, map[string]any{"task_id": taskID}, c.cfg.PollTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return StatusPending, nil, ctx.Err()
		}
		c.logger.Warn("poll failed, will retry next tick",
			zap.String("task_id", taskID),
			zap.Error(err))
		return StatusPending, nil, nil
	}
	rawStatus, result := extractStatusResult(inner)
	status := classifyStatus(rawStatus)
	c.logger.Debug("poll status",
		zap.String("task_id", taskID),
		zap.String("status", string(status)))
	return status, result, nil
}

// Download fetches the bytes behind a signed artifact URL through the
// gateway's proxy-download convention: the URL's signature parameters are
// repackaged as get_audio call args and the response payload is decoded
// from its base64+gzip transport encoding.
func (c *Client) Download(ctx context.Context, signedURL, project string) ([]byte, error) {
	args, err := proxyArgs(signedURL)
	if err != nil {
		return nil, err
	}
	c.logger.Info("downloading artifact via proxy",
		zap.String("filename", args["filename"].(string)))
	inner, err := c.call(ctx, callGetAudio, project, args, c.cfg.DownloadTimeout)
	if err != nil {
		return nil, err
	}
	return c.codec.Extract(inner)
}

// proxyArgs dissects a signed OSS download URL into get_audio call args.
func proxyArgs(signedURL string) (map[string]any, error) {
	u, err := url.Parse(signedURL)
	if err != nil {
		return nil, &ProtocolError{CallName: callGetAudio, Reason: fmt.Sprintf("bad artifact URL: %v", err)}
	}
	q := u.Query()
	keyID := q.Get("OSSAccessKeyId")
	expires := q.Get("Expires")
	signature := q.Get("Signature")
	if keyID == "" || expires == "" || signature == "" {
		return nil, &ProtocolError{CallName: callGetAudio, Reason: "artifact URL missing signature parameters"}
	}
	return map[string]any{
		"filename":          path.Base(u.Path),
		"oss_access_key_id": keyID,
		"expires":           expires,
		"signature":         signature,
	}, nil
}
