package logger

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

// encode renders e as one line without the trailing newline.
func (f logFormat) encode(e entry, order []string) ([]byte, error) {
	if f == formatJSON {
		return encodeJSON(e, order)
	}
	return encodeKV(e, order), nil
}

// orderedKeys lists the keys of order that are present, then the rest sorted.
func orderedKeys(e entry, order []string) []string {
	keys := make([]string, 0, len(e))
	for _, key := range order {
		if _, ok := e[key]; ok {
			keys = append(keys, key)
		}
	}
	rest := slices.Sorted(maps.Keys(e))
	rest = slices.DeleteFunc(rest, func(k string) bool { return slices.Contains(order, k) })
	return append(keys, rest...)
}

func encodeJSON(e entry, order []string) ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, key := range orderedKeys(e, order) {
		data, err := json.Marshal(e[key])
		if err != nil {
			return nil, fmt.Errorf("logger: marshal %s: %w", key, err)
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(key))
		b.WriteByte(':')
		b.Write(data)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func encodeKV(e entry, order []string) []byte {
	var b strings.Builder
	for i, key := range orderedKeys(e, order) {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(kvValue(e[key]))
	}
	return []byte(b.String())
}

// kvValue quotes values containing spaces, control characters, '=' or '"'.
func kvValue(val any) string {
	var s string
	switch v := val.(type) {
	case string:
		s = v
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int, uint64, float64:
		return fmt.Sprint(v)
	default:
		s = fmt.Sprint(v)
	}
	if strings.IndexFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) >= 0 {
		return strconv.Quote(s)
	}
	return s
}
