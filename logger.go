package auth

import (
	"fmt"
	"regexp"
	"strings"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

// PIIFields are the log argument keys whose values get obfuscated by the
// redacting logger. Credentials and live tokens never reach log output.
var PIIFields = []string{"email", "password", "new_password", "session_id", "reset_token"}

// Redaction is the replacement string for obfuscated values.
const Redaction = "***"

// RedactingLogger decorates a Logger, masking the values of sensitive
// key/value argument pairs and any key=value occurrences embedded in the
// message itself.
type RedactingLogger struct {
	next     Logger
	fields   map[string]struct{}
	patterns []*regexp.Regexp
}

// NewRedactingLogger wraps next so that values keyed by the given fields are
// replaced with Redaction before being emitted. With no fields it defaults
// to PIIFields. A nil next falls back to the default logger.
func NewRedactingLogger(next Logger, fields ...string) *RedactingLogger {
	if next == nil {
		next = defLogger{}
	}
	if len(fields) == 0 {
		fields = PIIFields
	}

	set := make(map[string]struct{}, len(fields))
	patterns := make([]*regexp.Regexp, 0, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
		patterns = append(patterns, regexp.MustCompile(regexp.QuoteMeta(f)+`=[^;,\s]*`))
	}

	return &RedactingLogger{next: next, fields: set, patterns: patterns}
}

func (l *RedactingLogger) Debug(format string, args ...any) {
	l.next.Debug(l.filterMessage(format), l.filterArgs(args)...)
}

func (l *RedactingLogger) Info(format string, args ...any) {
	l.next.Info(l.filterMessage(format), l.filterArgs(args)...)
}

func (l *RedactingLogger) Error(format string, args ...any) {
	l.next.Error(l.filterMessage(format), l.filterArgs(args)...)
}

func (l *RedactingLogger) filterMessage(message string) string {
	for _, p := range l.patterns {
		message = p.ReplaceAllStringFunc(message, func(m string) string {
			key := m[:strings.Index(m, "=")]
			return key + "=" + Redaction
		})
	}
	return message
}

// filterArgs treats args as alternating key/value pairs, the way our loggers
// are called, and masks the value that follows a sensitive key.
func (l *RedactingLogger) filterArgs(args []any) []any {
	if len(args) == 0 {
		return args
	}

	out := make([]any, len(args))
	copy(out, args)

	for i := 0; i < len(out)-1; i++ {
		key, ok := out[i].(string)
		if !ok {
			continue
		}
		if _, sensitive := l.fields[key]; sensitive {
			out[i+1] = Redaction
			i++
		}
	}

	return out
}
