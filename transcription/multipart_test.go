package transcription

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"testing"
)

func TestContentTypeFor(t *testing.T) {
	tests := map[string]string{
		"a.m4a":        "audio/mp4",
		"clip.MP4":     "audio/mp4",
		"song.mp3":     "audio/mpeg",
		"x.mpeg":       "audio/mpeg",
		"x.mpga":       "audio/mpeg",
		"demo.wav":     "audio/wav",
		"voice.aac":    "audio/aac",
		"voice.ogg":    "audio/ogg",
		"voice.flac":   "audio/flac",
		"voice.webm":   "audio/webm",
		"unknown.xyz":  "audio/mpeg",
		"no-extension": "audio/mpeg",
	}
	for name, want := range tests {
		if got := ContentTypeFor(name); got != want {
			t.Errorf("ContentTypeFor(%q) = %q, want %q", name, got, want)
		}
	}
}

type part struct {
	name, fileName, contentType string
	data                        []byte
}

func decode(t *testing.T, body []byte, contentType string) (string, []part) {
	t.Helper()
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("parse content type: %v", err)
	}
	boundary := params["boundary"]
	mr := multipart.NewReader(bytes.NewReader(body), boundary)
	var parts []part
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			return boundary, parts
		}
		if err != nil {
			t.Fatalf("next part: %v", err)
		}
		data, _ := io.ReadAll(p)
		parts = append(parts, part{p.FormName(), p.FileName(), p.Header.Get("Content-Type"), data})
	}
}

func TestEncodeUpload_TwoPartsWithoutPrompt(t *testing.T) {
	audio := []byte{0x00, 0x01, 0x02}
	body, ct, err := EncodeUpload("whisper-1", "", audio, "a.m4a")
	if err != nil {
		t.Fatalf("EncodeUpload: %v", err)
	}

	boundary, parts := decode(t, body, ct)
	if !strings.HasPrefix(boundary, "Boundary-") {
		t.Errorf("expected Boundary- prefix, got %q", boundary)
	}
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if parts[0].name != "model" || string(parts[0].data) != "whisper-1" {
		t.Errorf("unexpected model part %+v", parts[0])
	}
	f := parts[1]
	if f.name != "file" || f.fileName != "a.m4a" || f.contentType != "audio/mp4" {
		t.Errorf("unexpected file part %+v", f)
	}
	if !bytes.Equal(f.data, audio) {
		t.Errorf("file bytes changed: %v", f.data)
	}
	if !bytes.HasSuffix(body, []byte("--"+boundary+"--\r\n")) {
		t.Error("body must end with the closing delimiter")
	}
}

func TestEncodeUpload_WithPrompt(t *testing.T) {
	body, ct, err := EncodeUpload("whisper-1", "Kubernetes, gRPC", []byte("x"), "/tmp/memo.wav")
	if err != nil {
		t.Fatalf("EncodeUpload: %v", err)
	}
	_, parts := decode(t, body, ct)
	var names []string
	for _, p := range parts {
		names = append(names, p.name)
	}
	if strings.Join(names, ",") != "model,prompt,file" {
		t.Fatalf("unexpected part order %v", names)
	}
	if string(parts[1].data) != "Kubernetes, gRPC" {
		t.Errorf("unexpected prompt %q", parts[1].data)
	}
	if parts[2].fileName != "memo.wav" {
		t.Errorf("expected base file name, got %q", parts[2].fileName)
	}
}

func TestEncodeUpload_FreshBoundary(t *testing.T) {
	_, ct1, _ := EncodeUpload("m", "", nil, "a.mp3")
	_, ct2, _ := EncodeUpload("m", "", nil, "a.mp3")
	if ct1 == ct2 {
		t.Errorf("expected distinct boundaries, got %q twice", ct1)
	}
}

func TestExtensions(t *testing.T) {
	exts := Extensions()
	if len(exts) != 10 {
		t.Fatalf("expected 10 extensions, got %v", exts)
	}
	for i := 1; i < len(exts); i++ {
		if exts[i-1] >= exts[i] {
			t.Fatalf("extensions not sorted: %v", exts)
		}
	}
}
