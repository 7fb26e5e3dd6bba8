package api

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// messageFields are tried in order when pulling a message out of an error body
var messageFields = []string{"detail", "message", "error"}

// extractMessage returns the human-readable message of an error body, or ""
func extractMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if !gjson.ValidBytes(body) {
		// plain-text bodies from proxies are rarely worth showing
		return ""
	}

	for _, field := range messageFields {
		res := gjson.GetBytes(body, field)
		switch {
		case !res.Exists():
			continue
		case res.Type == gjson.String:
			if msg := strings.TrimSpace(res.String()); msg != "" {
				return msg
			}
		case res.IsArray():
			// validation failures arrive as [{"msg": "..."}]
			if msg := res.Get("0.msg"); msg.Exists() {
				return strings.TrimSpace(msg.String())
			}
		case res.IsObject():
			if msg := res.Get("message"); msg.Exists() {
				return strings.TrimSpace(msg.String())
			}
		}
	}
	return ""
}

// listPayload returns the JSON array in body, which the backend sends
// either bare or wrapped under one of keys
func listPayload(body []byte, keys ...string) []byte {
	res := gjson.ParseBytes(body)
	if res.IsArray() {
		return body
	}
	for _, key := range keys {
		if v := res.Get(key); v.IsArray() {
			return []byte(v.Raw)
		}
	}
	return []byte("[]")
}

// decodeList decodes a possibly wrapped JSON array into out
func decodeList(body json.RawMessage, out interface{}, keys ...string) error {
	return json.Unmarshal(listPayload(body, keys...), out)
}
