package logger

import (
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	coreconfig "github.com/foodpod-bot/foodpod/core/config"
)

const (
	defaultSampleNum = 1
	defaultSampleDen = 50
)

// settings is the resolved form of coreconfig.LoggingConfig.
type settings struct {
	format    logFormat
	level     slog.Level
	keyOrder  []string
	profile   string
	sampleNum int
	sampleDen int
	file      string
}

func settingsFrom(cfg *coreconfig.Config) settings {
	s := settings{
		format:    formatJSON,
		level:     slog.LevelInfo,
		keyOrder:  append([]string(nil), defaultKeyOrder...),
		profile:   "prod",
		sampleNum: defaultSampleNum,
		sampleDen: defaultSampleDen,
	}
	if cfg == nil {
		return s
	}
	lc := cfg.Logging

	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		s.profile = p
	}
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		s.format = formatKV
	case "json":
	default:
		if s.profile == "debug" || s.profile == "dev" {
			s.format = formatKV
		}
	}
	switch strings.ToLower(strings.TrimSpace(lc.Level)) {
	case "debug":
		s.level = slog.LevelDebug
	case "warn", "warning":
		s.level = slog.LevelWarn
	case "error":
		s.level = slog.LevelError
	}
	if order := splitKeys(lc.KeysOrder); len(order) > 0 {
		s.keyOrder = order
	}
	if spec := strings.TrimSpace(lc.DebugSample); spec != "" {
		num, den := parseRatioSpec(spec)
		switch {
		case num == 0 && den == 0:
			s.sampleNum, s.sampleDen = 0, 0
		case num > 0 && den > 0:
			s.sampleNum, s.sampleDen = num, den
		}
	}
	if dir, name := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile); dir != "" && name != "" {
		s.file = filepath.Join(dir, name)
	}
	return s
}

func splitKeys(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "default" {
		return nil
	}
	var out []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// outputs always includes stdout. A log file that cannot be opened is
// reported on the standard logger and skipped.
func (s settings) outputs() ([]io.Writer, []io.Closer) {
	writers := []io.Writer{os.Stdout}
	if s.file == "" {
		return writers, nil
	}
	if err := os.MkdirAll(filepath.Dir(s.file), 0o755); err != nil {
		log.Printf("logger: create log dir for %s: %v", s.file, err)
		return writers, nil
	}
	f, err := os.OpenFile(s.file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("logger: open log file %s: %v", s.file, err)
		return writers, nil
	}
	return append(writers, f), []io.Closer{f}
}
