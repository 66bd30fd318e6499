package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// varRefRegex matches ${VAR}, ${VAR:-default} and ${VAR:?message} references,
// including the escaped form $${VAR}.
var varRefRegex = regexp.MustCompile(`\$?\$\{([^}]*)\}`)

// SubstituteEnvVars replaces environment variable references in YAML content.
// Supports:
//   - ${VAR_NAME} - basic substitution
//   - ${VAR:-default} - use default if VAR is empty/unset
//   - ${VAR:?error message} - error if VAR is empty/unset
//   - $${VAR} - escape sequence, results in literal ${VAR}
func SubstituteEnvVars(content string) (string, error) {
	var substErr error

	result := varRefRegex.ReplaceAllStringFunc(content, func(match string) string {
		if strings.HasPrefix(match, "$$") {
			// Escaped reference, emit literally without the leading $.
			return match[1:]
		}

		expr := match[2 : len(match)-1]

		if name, msg, ok := strings.Cut(expr, ":?"); ok {
			value := os.Getenv(strings.TrimSpace(name))
			if value == "" {
				msg = strings.TrimSpace(msg)
				if msg == "" {
					msg = fmt.Sprintf("required environment variable %s is not set", strings.TrimSpace(name))
				}
				substErr = fmt.Errorf("%s", msg)
				return ""
			}
			return value
		}

		if name, def, ok := strings.Cut(expr, ":-"); ok {
			value := os.Getenv(strings.TrimSpace(name))
			if value == "" {
				return strings.TrimSpace(def)
			}
			return value
		}

		return os.Getenv(expr)
	})

	if substErr != nil {
		return result, substErr
	}
	return result, nil
}
