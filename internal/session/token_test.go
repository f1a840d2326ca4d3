package session

import (
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	tok := Token{
		Action:    ActionRateWord,
		WordID:    12345,
		Rating:    3,
		SessionID: "9f2c",
	}

	encoded := tok.Encode()
	if len(encoded) > TokenMaxLen {
		t.Fatalf("encoded token is %d bytes, limit %d: %s", len(encoded), TokenMaxLen, encoded)
	}

	decoded := DecodeToken(encoded)
	if decoded != tok {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, tok)
	}
}

func TestTokenStaysWithinBudget(t *testing.T) {
	// Worst case: large IDs plus an untruncated UUID session identifier
	tok := Token{
		Action:    ActionShowAnswer,
		WordID:    9223372036854775807,
		Index:     9999,
		SessionID: "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
	}

	encoded := tok.Encode()
	if len(encoded) > TokenMaxLen {
		t.Fatalf("encoded token is %d bytes, limit %d: %s", len(encoded), TokenMaxLen, encoded)
	}

	decoded := DecodeToken(encoded)
	if decoded.Action != ActionShowAnswer || decoded.WordID != tok.WordID || decoded.Index != tok.Index {
		t.Errorf("discriminants lost in truncation: %+v", decoded)
	}
}

func TestDecodeMalformedFailsClosed(t *testing.T) {
	for _, input := range []string{"", "not json", "[1,2,3]", `{"a":`, "42", `{"w":"abc"}`} {
		tok := DecodeToken(input)
		if tok.Action != "" {
			t.Errorf("DecodeToken(%q).Action = %q, want empty", input, tok.Action)
		}
	}
}

func TestDecodeLegacyLongKeys(t *testing.T) {
	tok := DecodeToken(`{"action":"rate_word","word_id":42,"rating":4}`)
	if tok.Action != ActionRateWord {
		t.Errorf("action = %q, want %q", tok.Action, ActionRateWord)
	}
	if tok.WordID != 42 {
		t.Errorf("word id = %d, want 42", tok.WordID)
	}
	if tok.Rating != 4 {
		t.Errorf("rating = %d, want 4", tok.Rating)
	}
}

func TestShortKeysPreferredOverLong(t *testing.T) {
	tok := DecodeToken(`{"a":"show_answer","action":"rate_word","w":7}`)
	if tok.Action != ActionShowAnswer {
		t.Errorf("action = %q, want short-key value %q", tok.Action, ActionShowAnswer)
	}
}
