package pdfdoc

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/quotepipe/quotepipe/fields"
)

func TestOpenCorrupt(t *testing.T) {
	if _, err := open([]byte("definitely not a PDF")); err == nil {
		t.Fatal("expected error for corrupt content")
	}
}

func TestAdapterExtractCorrupt(t *testing.T) {
	a := NewAdapter(fields.Default(), Options{})
	if _, _, err := a.Extract(context.Background(), []byte("garbage"), "broken.pdf"); err == nil {
		t.Fatal("expected error for unreadable attachment")
	}
}

func TestParseContentStream(t *testing.T) {
	stream := strings.Join([]string{
		"BT",
		"/F1 10 Tf",
		"(SKU) Tj",
		"100 0 Td",
		"(Qty) Tj",
		"200 0 Td",
		"(Unit Price) Tj",
		"T*",
		"(SRV-100) Tj",
		"100 0 Td",
		"(2) Tj",
		"200 0 Td",
		"(500.00) Tj",
		"ET",
	}, "\n")

	got := parseContentStream([]byte(stream))
	want := "SKU  Qty  Unit Price\nSRV-100  2  500.00"
	if got != want {
		t.Errorf("parseContentStream =\n%q\nwant\n%q", got, want)
	}
}

func TestParseContentStreamTJArray(t *testing.T) {
	got := parseContentStream([]byte("[(Hel) -20 (lo)] TJ"))
	if got != "Hello" {
		t.Errorf("got %q, want %q", got, "Hello")
	}
}

func TestParseContentStreamNextLine(t *testing.T) {
	got := parseContentStream([]byte("(first) Tj\n(second) '"))
	if got != "first\nsecond" {
		t.Errorf("got %q, want %q", got, "first\nsecond")
	}
}

func TestDecodeLiteral(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`plain`, "plain"},
		{`a\nb`, "a\nb"},
		{`a\tb`, "a\tb"},
		{`\\back`, `\back`},
		{`\050paren\051`, "(paren)"},
		{`\101BC`, "ABC"},
	}
	for _, tt := range tests {
		if got := decodeLiteral([]byte(tt.raw)); got != tt.want {
			t.Errorf("decodeLiteral(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestTidyText(t *testing.T) {
	got := tidyText("a\x00b  \n\n\n\nc\n")
	want := "ab\n\nc"
	if got != want {
		t.Errorf("tidyText = %q, want %q", got, want)
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	if o.MinTextRows != 1 || o.OCRLanguage != "eng" || o.PageTimeout != 10*time.Second {
		t.Errorf("defaults = %+v", o)
	}
	o = Options{MinTextRows: 3, OCRLanguage: "eng+heb", PageTimeout: time.Second}.withDefaults()
	if o.MinTextRows != 3 || o.OCRLanguage != "eng+heb" || o.PageTimeout != time.Second {
		t.Errorf("explicit options overwritten: %+v", o)
	}
}

func TestRecognizeImagesTimeout(t *testing.T) {
	a := &Adapter{
		opts: Options{PageTimeout: 20 * time.Millisecond}.withDefaults(),
		recognize: func(lang string, image []byte) (string, error) {
			time.Sleep(time.Second)
			return "too late", nil
		},
	}
	_, err := a.recognizeImages(context.Background(), [][]byte{{1, 2, 3}})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestRecognizeImagesJoinsPages(t *testing.T) {
	a := &Adapter{
		opts: Options{}.withDefaults(),
		recognize: func(lang string, image []byte) (string, error) {
			return string(image), nil
		},
	}
	got, err := a.recognizeImages(context.Background(), [][]byte{[]byte("one"), []byte(""), []byte("two")})
	if err != nil {
		t.Fatalf("recognizeImages: %v", err)
	}
	if got != "one\ntwo" {
		t.Errorf("got %q, want %q", got, "one\ntwo")
	}
}

func TestNormalizeImage(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	pngData := buf.Bytes()

	if got := normalizeImage(pngData, "png"); !bytes.Equal(got, pngData) {
		t.Error("PNG data must pass through unchanged")
	}
	garbage := []byte("not an image")
	if got := normalizeImage(garbage, "tiff"); !bytes.Equal(got, garbage) {
		t.Error("undecodable data must be returned as-is")
	}
	if got := normalizeImage(pngData, ""); len(got) == 0 {
		t.Error("unknown file type with decodable data must produce output")
	}
}
