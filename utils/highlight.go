package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"
)

// DetectLanguage picks a chroma lexer name from the file name, then from the content.
func DetectLanguage(path string, content []byte) string {
	if lexer := lexers.Match(path); lexer != nil {
		return lexer.Config().Name
	}
	if lexer := lexers.Analyse(string(content)); lexer != nil {
		return lexer.Config().Name
	}
	return "plaintext"
}

// RenderContent writes content to w, highlighted for the detected language when highlight is set.
func RenderContent(w io.Writer, path string, content []byte, theme string, highlight bool) error {
	if !highlight {
		_, err := w.Write(content)
		return err
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, string(content), DetectLanguage(path, content), "terminal256", theme); err != nil {
		return fmt.Errorf("failed to highlight %s: %w", path, err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// RenderContentWithContext renders content line by line and stops early when ctx is cancelled
func RenderContentWithContext(ctx context.Context, w io.Writer, path string, content []byte, theme string, highlight bool) error {
	language := DetectLanguage(path, content)
	lines := strings.SplitAfter(string(content), "\n")

	for i, line := range lines {
		// Check for cancellation every few lines for responsive interruption
		if i%5 == 0 {
			select {
			case <-ctx.Done():
				fmt.Fprintf(w, "\n\nOutput interrupted...\n")
				return ctx.Err()
			default:
			}
		}

		if !highlight {
			if _, err := io.WriteString(w, line); err != nil {
				return err
			}
			continue
		}

		var buf bytes.Buffer
		if err := quick.Highlight(&buf, line, language, "terminal256", theme); err != nil {
			return err
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
	}

	return nil
}
