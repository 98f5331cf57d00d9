package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// MultipartBody represents a multipart/form-data request body.
// Pass this as the Body field of a Request to automatically construct
// multipart encoding with the correct Content-Type header.
//
// Parts are written in order: every entry of Fields, then every entry of Files.
type MultipartBody struct {
	// Boundary fixes the part delimiter. Empty lets mime/multipart pick one.
	Boundary string
	// Fields are simple form fields.
	Fields []FormField
	// Files are file upload fields.
	Files []FileField
}

// FormField is a single name/value form field.
type FormField struct {
	Name  string
	Value string
}

// FileField represents a file to upload in a multipart request.
type FileField struct {
	// FieldName is the form field name (e.g., "file", "audio").
	FieldName string
	// FileName is the file name sent to the server.
	FileName string
	// ContentType is the MIME type (e.g., "audio/wav"). If empty, uses application/octet-stream.
	ContentType string
	// Data is the file content. Used if Reader is nil.
	Data []byte
	// Reader is an alternative to Data for large files.
	Reader io.Reader
}

// Encode builds the complete body and returns it with the Content-Type
// header value, boundary included.
func (m *MultipartBody) Encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if m.Boundary != "" {
		if err := w.SetBoundary(m.Boundary); err != nil {
			return nil, "", fmt.Errorf("multipart boundary: %w", err)
		}
	}

	for _, f := range m.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", fmt.Errorf("multipart field %s: %w", f.Name, err)
		}
	}
	for _, f := range m.Files {
		if err := writeFile(w, f); err != nil {
			return nil, "", fmt.Errorf("multipart file %s: %w", f.FieldName, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, f FileField) error {
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(f.FieldName), quoteEscaper.Replace(f.FileName)))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return err
	}
	src := f.Reader
	if f.Data != nil || src == nil {
		src = bytes.NewReader(f.Data)
	}
	_, err = io.Copy(part, src)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")
