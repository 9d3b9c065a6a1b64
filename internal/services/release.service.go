package services

import (
	"bufio"
	"errors"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"

	"aboutsettings/internal/log"
	"aboutsettings/internal/models"
)

var (
	// Bash variable names: letter or underscore, then letters, digits, underscores
	releaseKeyPattern = regexp.MustCompile(`^[a-zA-Z_]+[a-zA-Z0-9_]*$`)
	// Backslash followed by any one character
	releaseEscapePattern = regexp.MustCompile(`\\(.)`)
)

// ParseReleaseFile reads an os-release style file of shell variable
// assignments (see os-release(5)) into a ReleaseMap.
//
// A file that cannot be opened yields an empty map. Malformed lines are
// logged and skipped; later assignments to the same key win.
func ParseReleaseFile(path string) models.ReleaseMap {
	result := models.ReleaseMap{}

	file, err := os.Open(path)
	if err != nil {
		log.Debug().Err(err).Str("file", path).Msg("release file not readable")
		return result
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			log.Warn().Err(err).Str("file", path).Msg("Error reading release file")
			break
		}
		if line == "" && err != nil {
			break
		}

		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
		line = strings.ToValidUTF8(line, "\uFFFD")

		if !strings.HasPrefix(line, "#") {
			if key, value, ok := parseReleaseLine(line); ok {
				result[key] = value
			}
		}

		if err != nil {
			break
		}
	}

	return result
}

// parseReleaseLine splits a single non-comment line into key and unquoted,
// unescaped value. ok is false when the line must be dropped.
func parseReleaseLine(line string) (key, value string, ok bool) {
	key, value, _ = strings.Cut(line, "=")
	value = strings.TrimRightFunc(value, unicode.IsSpace)

	if !releaseKeyPattern.MatchString(key) {
		log.Warn().Str("line", line).Msg("Invalid key in input line")
		return "", "", false
	}

	// A lone quote character has no closing partner; it is kept as-is.
	if len(value) >= 2 && (value[0] == '\'' || value[0] == '"') {
		if value[0] != value[len(value)-1] {
			log.Warn().Str("line", line).Msg("Quoting error in input line")
			return "", "", false
		}
		value = value[1 : len(value)-1]
	}

	value = releaseEscapePattern.ReplaceAllString(value, "$1")

	return key, value, true
}
