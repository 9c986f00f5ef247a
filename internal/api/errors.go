// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Operation names used as the NetworkError prefix.
const (
	OpFetchChatLogs = "fetch chat logs"
	OpFetchChatLog  = "fetch chat log"
	OpSubmitChat    = "submit chat"
	OpHealth        = "check health"
)

// NetworkError is returned for any failed request: a non-2xx status, a
// transport failure, or a body that could not be decoded.
type NetworkError struct {
	// Op names what was attempted, e.g. "submit chat".
	Op string

	// StatusCode is the HTTP status, 0 when no response arrived.
	StatusCode int

	// Status is the status line text, e.g. "500 Internal Server Error".
	Status string

	// Detail is the server's explanation when the body carried one.
	Detail string

	// Err is the underlying transport or decode error.
	Err error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Status != "":
		return fmt.Sprintf("Failed to %s: %s", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("Failed to %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("Failed to %s", e.Op)
	}
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HasStatus reports whether a response was received.
func (e *NetworkError) HasStatus() bool {
	return e.StatusCode != 0
}

// IsNotFound reports whether the server answered 404.
func (e *NetworkError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsNetworkError reports whether err is or wraps a *NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.StatusCode
	}
	return 0
}

// Describe returns err's message followed by the server detail, if any,
// on a second line. UI layers display this.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var ne *NetworkError
	if errors.As(err, &ne) && ne.Detail != "" {
		return ne.Error() + "\n" + ne.Detail
	}
	return err.Error()
}

func statusError(op string, resp *http.Response, body []byte) *NetworkError {
	status := strings.TrimSpace(resp.Status)
	if status == "" {
		status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return &NetworkError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Status:     status,
		Detail:     parseDetail(body),
	}
}

// parseDetail extracts the "detail" field of an error body. The services
// send either a string or an object carrying "error" and sometimes
// "message"; validation failures send a list of objects with "msg".
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if len(body) == 0 || json.Unmarshal(body, &envelope) != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var text string
	if json.Unmarshal(envelope.Detail, &text) == nil {
		return text
	}

	var obj struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(envelope.Detail, &obj) == nil && obj.Error != "" {
		if obj.Message != "" {
			return obj.Error + ": " + obj.Message
		}
		return obj.Error
	}

	var list []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(envelope.Detail, &list) == nil {
		msgs := make([]string, 0, len(list))
		for _, item := range list {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
