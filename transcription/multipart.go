package transcription

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/kbukum/voxnote/httpclient"
)

const defaultAudioContentType = "audio/mpeg"

var audioContentTypes = map[string]string{
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".mpeg": "audio/mpeg",
	".mpga": "audio/mpeg",
	".wav":  "audio/wav",
	".aac":  "audio/aac",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".webm": "audio/webm",
}

// ContentTypeFor returns the audio MIME type for a file name, falling back to
// audio/mpeg for unknown extensions.
func ContentTypeFor(fileName string) string {
	if ct, ok := audioContentTypes[strings.ToLower(filepath.Ext(fileName))]; ok {
		return ct
	}
	return defaultAudioContentType
}

// Extensions returns the audio file extensions with a known content type,
// sorted.
func Extensions() []string {
	exts := make([]string, 0, len(audioContentTypes))
	for ext := range audioContentTypes {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// EncodeUpload builds the multipart/form-data body for a transcription
// upload. Parts are model, prompt (omitted when empty) and file, in that
// order. Every call uses a fresh "Boundary-<uuid>" delimiter.
func EncodeUpload(model, prompt string, audio []byte, fileName string) ([]byte, string, error) {
	fields := []httpclient.FormField{{Name: "model", Value: model}}
	if prompt != "" {
		fields = append(fields, httpclient.FormField{Name: "prompt", Value: prompt})
	}

	body := &httpclient.MultipartBody{
		Boundary: "Boundary-" + uuid.NewString(),
		Fields:   fields,
		Files: []httpclient.FileField{{
			FieldName:   "file",
			FileName:    filepath.Base(fileName),
			ContentType: ContentTypeFor(fileName),
			Data:        audio,
		}},
	}
	return body.Encode()
}
