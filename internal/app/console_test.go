package app

import (
	"bytes"
	"testing"
)

func TestPrintFix(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte(`{"lat":36.360638,"lon":138.84854,"alt_m":35.5,"local":"2019-02-04T00:55:14+09:00"}`)
	if err := printFix(&buf, payload); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := "[GPS ]  Mon Feb 4 2019 0:55:14  lat=36.360638 lon=138.848540 alt=36m\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}

func TestPrintFix_BadPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := printFix(&buf, []byte("not json")); err == nil {
		t.Fatalf("expected error")
	}
}
