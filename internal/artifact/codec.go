// Package artifact decodes gateway artifact payloads and manages the local
// scratch directory they land in.
package artifact

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Error is a terminal artifact-handling failure: the payload could not be
// located or decoded.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("artifact: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("artifact: %s", e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Codec decodes the gateway's proxy-download transport encoding.
type Codec struct {
	logger *zap.Logger
}

func NewCodec(logger *zap.Logger) *Codec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Codec{logger: logger}
}

// Extract pulls the file bytes out of a normalized get_audio inner result.
// The payload sits in gzippedRaw as base64 of a gzip stream; gateways that
// stopped compressing ship plain base64, so a failed gzip decode falls back
// to the base64-decoded bytes with a warning instead of failing.
func (c *Codec) Extract(inner map[string]any) ([]byte, error) {
	raw, ok := inner["gzippedRaw"].(string)
	if !ok {
		return nil, &Error{Reason: "response missing gzippedRaw field"}
	}
	compressed, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, &Error{Reason: "gzippedRaw is not valid base64", Err: err}
	}
	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		c.logger.Warn("artifact payload is not gzip, using raw bytes", zap.Error(err))
		return compressed, nil
	}
	defer zr.Close()
	content, err := io.ReadAll(zr)
	if err != nil {
		c.logger.Warn("gzip stream truncated, using raw bytes", zap.Error(err))
		return compressed, nil
	}
	return content, nil
}
