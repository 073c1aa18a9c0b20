package logger

import "strings"

// vocabulary maps accepted spellings onto the canonical value.
type vocabulary map[string]string

func (v vocabulary) lookup(s string) (string, bool) {
	canon, ok := v[strings.ToLower(strings.TrimSpace(s))]
	return canon, ok
}

var (
	levels = vocabulary{
		"debug":   "DEBUG",
		"info":    "INFO",
		"warn":    "WARN",
		"warning": "WARN",
		"error":   "ERROR",
		"fatal":   "FATAL",
	}
	statuses = vocabulary{
		"ok":           "ok",
		"fail":         "fail",
		"failed":       "fail",
		"skip":         "skip",
		"retry":        "retry",
		"rate_limited": "rate_limited",
		"cancelled":    "cancelled",
		"canceled":     "cancelled",
	}
	outcomes = vocabulary{
		"ok":           "ok",
		"fail":         "fail",
		"cancelled":    "cancelled",
		"canceled":     "cancelled",
		"rate_limited": "rate_limited",
	}
)

// normalizeLevel upper-cases unknown level names; an empty name is INFO.
func normalizeLevel(level string) string {
	if canon, ok := levels.lookup(level); ok {
		return canon
	}
	if level == "" {
		return "INFO"
	}
	return strings.ToUpper(level)
}

func normalizeStatus(status string) (string, bool) {
	return statuses.lookup(status)
}

func normalizeOutcome(outcome string) (string, bool) {
	return outcomes.lookup(outcome)
}

// defaultKeyOrder puts identity and routing keys first; the rest follow sorted.
var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"pod_id",
	"job",
	"handler",
	"kind",
	"op",
	"cb_key",
	"button",
	"state",
	"next_state",
	"storage",
	"item",
	"outcome",
	"duration_ms",
	"messages",
	"edits",
	"kb",
	"prompt",
	"count",
	"pods",
	"sent",
	"failed",
	"items",
	"payload",
	"username",
	"mode",
	"listen",
	"public_url",
	"driver",
	"db",
	"host",
	"port",
	"spec",
	"next_run",
	"err",
	"err_code",
	"cause",
	"retryable",
	"attempts",
	"rate_limited",
}
