package callbacks

import (
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Callback data is "<scope>:<key>:<payload>". The scope names the chat the
// button was rendered for, the key selects the registered handler and the
// payload is handler specific. Buttons built with a telebot Unique keep the
// "\f<unique>|<payload>" form and are still understood here.
const (
	Sep = ":"
	// MaxDataLen is Telegram's limit for callback_data, in bytes.
	MaxDataLen = 64
)

var (
	// ErrTooLong is returned when encoded data does not fit in a button.
	ErrTooLong = errors.New("callbacks: data exceeds 64 bytes")
	// ErrMalformed is returned for data that is not scope:key:payload.
	ErrMalformed = errors.New("callbacks: malformed data")
)

// Join encodes the three parts and enforces MaxDataLen.
func Join(scope, key, payload string) (string, error) {
	if scope == "" || key == "" || strings.Contains(scope, Sep) || strings.Contains(key, Sep) {
		return "", fmt.Errorf("%w: scope %q key %q", ErrMalformed, scope, key)
	}
	data := scope + Sep + key + Sep + payload
	if len(data) > MaxDataLen {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLong, len(data))
	}
	return data, nil
}

// Split is the inverse of Join. The payload may itself contain Sep.
func Split(data string) (scope, key, payload string, err error) {
	parts := strings.SplitN(data, Sep, 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return "", "", "", fmt.Errorf("%w: %q", ErrMalformed, data)
	}
	return parts[0], parts[1], parts[2], nil
}

// ParseCallbackData returns the routing key and payload of a callback.
func ParseCallbackData(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := cb.Data
	if strings.HasPrefix(raw, "\f") {
		parts := strings.SplitN(strings.TrimPrefix(raw, "\f"), "|", 2)
		if len(parts) == 2 {
			return strings.TrimSpace(parts[0]), parts[1]
		}
		return strings.TrimSpace(parts[0]), ""
	}
	_, key, payload, err := Split(raw)
	if err != nil {
		return "", ""
	}
	return key, payload
}
