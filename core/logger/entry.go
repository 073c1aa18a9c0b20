package logger

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
)

// entry is one log line under construction, keyed by output field name.
type entry map[string]any

func newEntry(r slog.Record, withUnixNano bool) entry {
	ts := r.Time.UTC()
	e := entry{
		"ts":    ts.Truncate(time.Millisecond).Format(timeFormatMillis),
		"level": normalizeLevel(r.Level.String()),
	}
	if withUnixNano {
		e["ts_unix_nano"] = ts.UnixNano()
	}
	return e
}

// str returns the field rendered as a string and whether it is present.
func (e entry) str(key string) (string, bool) {
	v, ok := e[key]
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case fmt.Stringer:
		return val.String(), true
	default:
		return fmt.Sprint(val), true
	}
}

// setDefault stores val under key unless the key is taken or val is zero.
func (e entry) setDefault(key string, val any) {
	if _, taken := e[key]; taken {
		return
	}
	switch v := val.(type) {
	case string:
		if v == "" {
			return
		}
	case int:
		if v == 0 {
			return
		}
	case int64:
		if v == 0 {
			return
		}
	}
	e[key] = val
}

// add flattens a into dotted keys below prefix. Durations are emitted in
// whole milliseconds under a "_ms" key.
func (e entry) add(prefix string, a slog.Attr) {
	key := a.Key
	switch {
	case key == "":
		key = prefix
	case prefix != "":
		key = prefix + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, child := range a.Value.Group() {
			e.add(key, child)
		}
		return
	}
	if key == "" {
		return
	}
	val, ok := plainValue(a.Value.Resolve())
	if !ok {
		return
	}
	if d, isDur := val.(time.Duration); isDur {
		e[durationKey(key)] = RoundMS(d).Milliseconds()
		return
	}
	e[key] = val
}

// plainValue converts v into something both encoders print predictably.
func plainValue(v slog.Value) (any, bool) {
	switch v.Kind() {
	case slog.KindString:
		return strings.TrimSpace(v.String()), true
	case slog.KindBool:
		return v.Bool(), true
	case slog.KindInt64:
		return v.Int64(), true
	case slog.KindUint64:
		if u := v.Uint64(); u > math.MaxInt64 {
			return u, true
		}
		return int64(v.Uint64()), true
	case slog.KindFloat64:
		return v.Float64(), true
	case slog.KindDuration:
		return v.Duration(), true
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339Nano), true
	}
	switch x := v.Any().(type) {
	case nil:
		return nil, false
	case error:
		return x.Error(), true
	case string:
		return strings.TrimSpace(x), true
	case time.Duration:
		return x, true
	case fmt.Stringer:
		return x.String(), true
	default:
		return fmt.Sprint(x), true
	}
}

// addContext copies request, pod and job metadata stored in ctx.
func (e entry) addContext(ctx context.Context) {
	if ctx == nil {
		return
	}
	e.setDefault("rid", RIDFrom(ctx))
	e.setDefault("user_id", UserIDFrom(ctx))
	e.setDefault("update_id", UpdateIDFrom(ctx))
	e.setDefault("chat_id", ChatIDFrom(ctx))
	e.setDefault("handler", HandlerFrom(ctx))
	e.setDefault("pod_id", PodFrom(ctx))
	e.setDefault("job", JobFrom(ctx))
}

// compactRID shortens rid; keepFull preserves the original as rid_full.
func (e entry) compactRID(keepFull bool) {
	rid, _ := e.str("rid")
	if rid == "" {
		return
	}
	compact := CompactRID(rid)
	if compact == "" || compact == rid {
		return
	}
	if keepFull {
		e.setDefault("rid_full", rid)
	}
	e["rid"] = compact
}

// normalizeEnums maps status and outcome onto the closed vocabularies.
// Unknown statuses are kept as written; unknown outcomes are dropped.
func (e entry) normalizeEnums() {
	if s, _ := e.str("status"); s != "" {
		if norm, ok := normalizeStatus(s); ok {
			e["status"] = norm
		}
	}
	if o, ok := e.str("outcome"); ok && o != "" {
		if norm, valid := normalizeOutcome(o); valid {
			e["outcome"] = norm
		} else {
			delete(e, "outcome")
		}
	}
}

// prune drops empty strings and nil values.
func (e entry) prune() {
	for k, v := range e {
		switch val := v.(type) {
		case nil:
			delete(e, k)
		case string:
			if val == "" {
				delete(e, k)
			}
		case fmt.Stringer:
			if val.String() == "" {
				delete(e, k)
			}
		}
	}
}

// redact masks secrets in every string field.
func (e entry) redact() {
	for k, v := range e {
		if s, ok := v.(string); ok {
			e[k] = Redact(s)
		}
	}
}
