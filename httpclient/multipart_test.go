package httpclient

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"testing"
)

func readParts(t *testing.T, body []byte, contentType string) []*multipart.Part {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("ParseMediaType error: %v", err)
	}
	if mediaType != "multipart/form-data" {
		t.Fatalf("media type = %q, want multipart/form-data", mediaType)
	}
	mr := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	var parts []*multipart.Part
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			return parts
		}
		if err != nil {
			t.Fatalf("NextPart error: %v", err)
		}
		parts = append(parts, p)
	}
}

func TestMultipartBody_Encode_PreservesOrder(t *testing.T) {
	mp := &MultipartBody{
		Fields: []FormField{{Name: "model", Value: "whisper-1"}, {Name: "prompt", Value: "names"}},
		Files:  []FileField{{FieldName: "file", FileName: "a.m4a", ContentType: "audio/mp4", Data: []byte{0x01, 0x02}}},
	}

	body, ct, err := mp.Encode()
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	parts := readParts(t, body, ct)
	var names []string
	for _, p := range parts {
		names = append(names, p.FormName())
	}
	if got := strings.Join(names, ","); got != "model,prompt,file" {
		t.Errorf("part order = %s, want model,prompt,file", got)
	}
}

func TestMultipartBody_Encode_CustomBoundary(t *testing.T) {
	mp := &MultipartBody{
		Boundary: "Boundary-1234",
		Fields:   []FormField{{Name: "model", Value: "whisper-1"}},
	}

	body, ct, err := mp.Encode()
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if ct != "multipart/form-data; boundary=Boundary-1234" {
		t.Errorf("unexpected content type %q", ct)
	}
	if !bytes.HasSuffix(body, []byte("--Boundary-1234--\r\n")) {
		t.Errorf("body must end with the closing delimiter, got %q", body)
	}
}

func TestMultipartBody_Encode_InvalidBoundary(t *testing.T) {
	mp := &MultipartBody{Boundary: "bad boundary with \"quotes\""}
	if _, _, err := mp.Encode(); err == nil {
		t.Fatal("expected error for invalid boundary")
	}
}

func TestMultipartBody_Encode_FileWithoutContentType(t *testing.T) {
	mp := &MultipartBody{
		Files: []FileField{{FieldName: "file", FileName: "blob.bin", Reader: strings.NewReader("stream")}},
	}

	body, ct, err := mp.Encode()
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	parts := readParts(t, body, ct)
	if len(parts) != 1 {
		t.Fatalf("expected one part, got %d", len(parts))
	}
	if got := parts[0].Header.Get("Content-Type"); got != "application/octet-stream" {
		t.Errorf("expected octet-stream default, got %q", got)
	}
}

func TestEscapeQuotes(t *testing.T) {
	if got := quoteEscaper.Replace(`my "file".wav`); got != `my \"file\".wav` {
		t.Errorf("unexpected escape result %q", got)
	}
}
