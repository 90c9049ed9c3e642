package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

const payloadKey = "cb_payload"

// ParseCallbackData splits callback data into a routing key and payload.
// Telebot's \f<unique>|<payload> encoding and plain data are both accepted.
func ParseCallbackData(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	key, payload, _ := strings.Cut(raw, "|")
	return strings.TrimSpace(key), payload
}

// SetPayload records the part of the key left after a prefix match.
func SetPayload(c tele.Context, payload string) {
	c.Set(payloadKey, payload)
}

// CallbackPayload returns the payload recorded by prefix routing, falling
// back to the part after '|' in the raw data.
func CallbackPayload(c tele.Context) string {
	if v, ok := c.Get(payloadKey).(string); ok && v != "" {
		return v
	}
	_, payload := ParseCallbackData(c.Callback())
	return payload
}
