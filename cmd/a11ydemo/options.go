package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

var defaultOptions = []string{ //nolint:gochecknoglobals
	"Apple",
	"Apricot",
	"Banana",
	"Blueberry",
	"Cherry",
	"Grape",
	"Kiwi",
	"Mango",
}

// loadOptions reads one option per line from path, in whatever charset the file
// uses. Blank lines, "#" comments and repeats are dropped. An empty path yields the
// built-in list.
func loadOptions(path string) ([]string, error) {
	if path == "" {
		return defaultOptions, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // The path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("reading options: %w", err)
	}

	text, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return parseOptions(text), nil
}

// decodeText converts data to UTF-8. Valid UTF-8 is kept as is; anything else goes
// through charset detection, falling back to the raw bytes when detection fails.
func decodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(bytes.TrimPrefix(data, []byte("\ufeff"))), nil
	}

	best, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil {
		return string(data), nil //nolint:nilerr // Undetectable input is shown as is
	}

	reader, err := charset.NewReaderLabel(best.Charset, bytes.NewReader(data))
	if err != nil {
		return string(data), nil //nolint:nilerr // Unknown labels are shown as is
	}

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}

	return string(decoded), nil
}

func parseOptions(text string) []string {
	seen := make(map[string]bool)

	var out []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || seen[line] {
			continue
		}

		seen[line] = true
		out = append(out, line)
	}

	return out
}
