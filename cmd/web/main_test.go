package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ConfigErrors(t *testing.T) {
	dir := t.TempDir()
	badPort := filepath.Join(dir, "bad_port.yaml")
	require.NoError(t, os.WriteFile(badPort, []byte("server:\n  port: 70000\n"), 0644))

	tests := []struct {
		name    string
		args    []string
		wantLog string
	}{
		{"missing config file", []string{"-config", filepath.Join(dir, "absent.yaml")}, "Failed to load configuration"},
		{"invalid port", []string{"-config", badPort}, "invalid server port"},
		{"unknown flag", []string{"-nope"}, "flag provided but not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			code := run(context.Background(), tt.args, &stderr)

			assert.Equal(t, 1, code)
			assert.Contains(t, stderr.String(), tt.wantLog)
		})
	}
}

func TestRun_Help(t *testing.T) {
	var stderr bytes.Buffer
	assert.Equal(t, 0, run(context.Background(), []string{"-h"}, &stderr))
	assert.Contains(t, stderr.String(), "-config")
}
