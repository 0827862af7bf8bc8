package utils

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "Go", DetectLanguage("main.go", nil))
	assert.Equal(t, "YAML", DetectLanguage("livefile-config.yml", nil))
	assert.Equal(t, "JSON", DetectLanguage("livefile-config.json", nil))
}

func TestRenderContent_Plain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderContent(&buf, "notes.txt", []byte("hello world"), "dracula", false))
	assert.Equal(t, "hello world", buf.String())
}

func TestRenderContent_Highlighted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderContent(&buf, "main.go", []byte("package main\n"), "dracula", true))

	assert.Contains(t, buf.String(), "package")
	assert.Contains(t, buf.String(), "\x1b[", "terminal output carries escape codes")
}

func TestRenderContentWithContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := RenderContentWithContext(ctx, &buf, "notes.txt", []byte("a\nb\n"), "dracula", false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, buf.String(), "Output interrupted")
}
