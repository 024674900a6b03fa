package routes

import "testing"

func TestParseIdentityTokenMalformedKeySet(t *testing.T) {
	// Must fail cleanly, not reach the parser with a nil key set
	_, err := parseIdentityToken([]byte("not a key set"), "a.b.c")
	if err == nil {
		t.Fatal("expected an error for a malformed key set")
	}
}

func TestParseIdentityTokenEmptyKeySet(t *testing.T) {
	_, err := parseIdentityToken([]byte(`{"keys":[]}`), "a.b.c")
	if err == nil {
		t.Fatal("expected an error when no key matches")
	}
}
