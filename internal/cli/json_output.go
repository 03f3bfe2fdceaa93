// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - Machine-readable output for --json.
//
// Every command that supports --json prints exactly one JSONResponse.

package cli

import (
	"encoding/json"
	"io"
	"time"

	"github.com/jeranaias/docvault/internal/security"
	"github.com/jeranaias/docvault/internal/users"
)

// JSONResponse is the standardized response format for all CLI commands.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data any `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the RFC3339 time when the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data any) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Write encodes the response to w with two-space indentation.
func (r *JSONResponse) Write(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// VersionData represents the data returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// RegisterData is returned by register.
type RegisterData struct {
	Username    string            `json:"username"`
	Permissions users.Permissions `json:"permissions"`
}

// LockoutListData is returned by lockout list.
type LockoutListData struct {
	MaxAttempts  int                   `json:"max_attempts"`
	LockDuration string                `json:"lock_duration"`
	Locked       []security.LockStatus `json:"locked"`
	Count        int                   `json:"count"`
}

// ConfigPathData is returned by config path.
type ConfigPathData struct {
	ConfigDir   string `json:"config_dir"`
	ConfigFile  string `json:"config_file"`
	Exists      bool   `json:"exists"`
	DataDir     string `json:"data_dir"`
	Credentials string `json:"credentials"`
	Profiles    string `json:"profiles"`
	Documents   string `json:"documents"`
}

// ConfigValueData is returned by config get and config set.
type ConfigValueData struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}
