package utils

import (
	"bytes"
	"testing"
)

func TestBrotliRoundTrip(t *testing.T) {
	original := bytes.Repeat([]byte("compressible document text. "), 100)

	compressed, err := CompressBrotli(original)
	if err != nil {
		t.Fatal(err)
	}
	if len(compressed) >= len(original) {
		t.Errorf("repetitive input should shrink: %d -> %d", len(original), len(compressed))
	}

	restored, err := DecompressBrotli(compressed)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(restored, original) {
		t.Error("round trip mismatch")
	}
}

func TestBrotliEmptyInput(t *testing.T) {
	compressed, err := CompressBrotli(nil)
	if err != nil {
		t.Fatal(err)
	}
	restored, err := DecompressBrotli(compressed)
	if err != nil {
		t.Fatal(err)
	}
	if len(restored) != 0 {
		t.Errorf("expected empty output, got %d bytes", len(restored))
	}
}
