package gateway

import (
	"encoding/json"
	"fmt"
)

// envelope is the outer wire wrapper returned by every gateway call.
type envelope struct {
	Success      bool            `json:"success"`
	ResultObj    json.RawMessage `json:"resultObj"`
	ResultMap    json.RawMessage `json:"resultMap"`
	ErrorMessage string          `json:"errorMessage"`
	TraceMsg     string          `json:"traceMsg"`
}

// normalizeEnvelope reduces the gateway's heterogeneous response shapes to
// one inner-result mapping. The inner result lives under resultObj.result
// on current gateways and resultMap.result on older ones, and may be a JSON
// string needing up to two rounds of unwrapping.
func normalizeEnvelope(callName string, body []byte) (map[string]any, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &ProtocolError{CallName: callName, Reason: fmt.Sprintf("unparseable response: %v", err)}
	}
	if !env.Success {
		msg := env.TraceMsg
		if msg == "" {
			msg = env.ErrorMessage
		}
		if msg == "" {
			msg = "unknown gateway error"
		}
		return nil, &Error{CallName: callName, Message: msg}
	}

	container := env.ResultObj
	if len(container) == 0 || string(container) == "null" {
		container = env.ResultMap
	}
	if len(container) == 0 || string(container) == "null" {
		return nil, &ProtocolError{CallName: callName, Reason: "missing resultObj/resultMap"}
	}
	var outer map[string]any
	if err := json.Unmarshal(container, &outer); err != nil {
		return nil, &ProtocolError{CallName: callName, Reason: fmt.Sprintf("result container is not an object: %v", err)}
	}
	inner, ok := outer["result"]
	if !ok || inner == nil {
		return nil, &ProtocolError{CallName: callName, Reason: "missing result field"}
	}

	// Unwrap stacked JSON-string encodings, at most twice.
	for i := 0; i < 2; i++ {
		s, isStr := inner.(string)
		if !isStr {
			break
		}
		var parsed any
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			return nil, &ProtocolError{CallName: callName, Reason: fmt.Sprintf("inner result string is not JSON: %v", err)}
		}
		inner = parsed
	}

	m, ok := inner.(map[string]any)
	if !ok {
		return nil, &ProtocolError{CallName: callName, Reason: fmt.Sprintf("inner result has type %T, want object", inner)}
	}
	return m, nil
}

// extractTaskID locates a submit response's task id across the known
// nesting generations: top-level task_id, then the legacy
// {success:"True", data:{task_id}} shape, then rawResult.data.task_id.
func extractTaskID(inner map[string]any) (string, error) {
	if id, ok := inner["task_id"].(string); ok && id != "" {
		return id, nil
	}
	if s, ok := inner["success"].(string); ok && s != "True" {
		msg, _ := inner["errMsg"].(string)
		if msg == "" {
			msg = "legacy gateway reported failure"
		}
		return "", &Error{CallName: callSubmit, Message: msg}
	}
	if data, ok := inner["data"].(map[string]any); ok {
		if id, ok := data["task_id"].(string); ok && id != "" {
			return id, nil
		}
	}
	if raw, ok := inner["rawResult"].(map[string]any); ok {
		if data, ok := raw["data"].(map[string]any); ok {
			if id, ok := data["task_id"].(string); ok && id != "" {
				return id, nil
			}
		}
	}
	return "", &ProtocolError{CallName: callSubmit, Reason: "no task_id in any known location"}
}

// extractStatusResult locates a poll response's status and the mapping the
// per-task result fields live in, across the same nesting generations.
func extractStatusResult(inner map[string]any) (string, map[string]any) {
	if s, ok := inner["status"].(string); ok {
		return s, inner
	}
	if data, ok := inner["data"].(map[string]any); ok {
		if s, ok := data["status"].(string); ok {
			return s, data
		}
	}
	if raw, ok := inner["rawResult"].(map[string]any); ok {
		if data, ok := raw["data"].(map[string]any); ok {
			if s, ok := data["status"].(string); ok {
				return s, data
			}
		}
	}
	return "", inner
}

// Status is the normalized task state as observed through polling.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// classifyStatus maps the gateway's status vocabulary onto the three
// normalized states. Anything unrecognized, including an absent status,
// counts as still pending.
func classifyStatus(raw string) Status {
	switch raw {
	case "completed", "success":
		return StatusSucceeded
	case "failed":
		return StatusFailed
	default:
		return StatusPending
	}
}
