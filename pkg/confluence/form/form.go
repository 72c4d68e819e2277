// Package form builds the multipart payload used for attachment uploads.
//
// Confluence expects the file under the field name "file"; an optional
// "comment" field annotates the attachment version.
package form

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// FileField is the field name Confluence reads attachment bytes from.
const FileField = "file"

var ErrEmpty = errors.New("form has no parts")

type part struct {
	field       string
	filename    string
	contentType string
	value       string
	r           io.Reader
}

// Form is a multipart form assembled by the caller and handed to the POST
// attachment transition.
type Form struct {
	parts []part
}

func New() *Form {
	return &Form{}
}

// AddFile adds a file part. contentType defaults to application/octet-stream.
func (f *Form) AddFile(field, filename, contentType string, r io.Reader) *Form {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	f.parts = append(f.parts, part{field: field, filename: filename, contentType: contentType, r: r})
	return f
}

// AddField adds a plain text field.
func (f *Form) AddField(name, value string) *Form {
	f.parts = append(f.parts, part{field: name, value: value})
	return f
}

// Encode renders the form. File readers are drained, so a Form encodes once.
func (f *Form) Encode() ([]byte, string, error) {
	if f == nil || len(f.parts) == 0 {
		return nil, "", ErrEmpty
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range f.parts {
		if p.r == nil {
			if err := w.WriteField(p.field, p.value); err != nil {
				return nil, "", fmt.Errorf("failed to write field %s: %w", p.field, err)
			}
			continue
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(p.field), escapeQuotes(p.filename)))
		h.Set("Content-Type", p.contentType)
		pw, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create part %s: %w", p.field, err)
		}
		if _, err := io.Copy(pw, p.r); err != nil {
			return nil, "", fmt.Errorf("failed to copy %s: %w", p.filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
