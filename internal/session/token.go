package session

import (
	"encoding/json"
)

// TokenMaxLen is the byte budget for a serialized transition token. The
// transport forwards tokens as inline-button callback data, which the
// messaging platform caps at 64 bytes.
const TokenMaxLen = 64

// Transition actions carried in tokens
const (
	ActionShowAnswer    = "show_answer"
	ActionRateWord      = "rate_word"
	ActionNextCard      = "next_card"
	ActionFinishSession = "finish_session"
)

// Token is the compact state-transition token that round-trips through the
// transport layer. Only the minimal discriminants needed to resume are
// encoded, never the batch itself.
type Token struct {
	Action    string `json:"a"`
	WordID    int64  `json:"w,omitempty"`
	Index     int    `json:"i,omitempty"`
	Rating    int    `json:"r,omitempty"`
	SessionID string `json:"s,omitempty"`
}

// Encode serializes the token with short keys. If the result would exceed
// TokenMaxLen the free-form session identifier is truncated, and dropped
// entirely as a last resort; encoding never fails on size.
func (t Token) Encode() string {
	data, err := json.Marshal(t)
	if err != nil {
		return "{}"
	}
	if len(data) <= TokenMaxLen {
		return string(data)
	}

	// Keep only the identifier tail, which is the distinguishing part
	if len(t.SessionID) > 4 {
		t.SessionID = t.SessionID[len(t.SessionID)-4:]
		if data, err = json.Marshal(t); err == nil && len(data) <= TokenMaxLen {
			return string(data)
		}
	}

	t.SessionID = ""
	if data, err = json.Marshal(t); err == nil {
		return string(data)
	}
	return "{}"
}

// DecodeToken parses callback data in either the short-key or the legacy
// long-key form. Malformed input yields a zero token (empty action) rather
// than an error: the caller treats it the same as an expired session.
func DecodeToken(data string) Token {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return Token{}
	}

	var t Token
	readString(raw, &t.Action, "a", "action")
	readInt64(raw, &t.WordID, "w", "word_id")
	readInt(raw, &t.Index, "i", "word_index")
	readInt(raw, &t.Rating, "r", "rating")
	readString(raw, &t.SessionID, "s", "session_id")
	return t
}

func readString(raw map[string]json.RawMessage, dst *string, keys ...string) {
	for _, key := range keys {
		if msg, ok := raw[key]; ok {
			var v string
			if json.Unmarshal(msg, &v) == nil {
				*dst = v
				return
			}
		}
	}
}

func readInt64(raw map[string]json.RawMessage, dst *int64, keys ...string) {
	for _, key := range keys {
		if msg, ok := raw[key]; ok {
			var v int64
			if json.Unmarshal(msg, &v) == nil {
				*dst = v
				return
			}
		}
	}
}

func readInt(raw map[string]json.RawMessage, dst *int, keys ...string) {
	for _, key := range keys {
		if msg, ok := raw[key]; ok {
			var v int
			if json.Unmarshal(msg, &v) == nil {
				*dst = v
				return
			}
		}
	}
}
