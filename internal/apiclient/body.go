package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

// Body is a request body encoder.
type Body interface {
	// Encode returns the payload and its Content-Type.
	Encode() (io.Reader, string, error)
}

type jsonBody struct{ v interface{} }

// JSON encodes v as application/json.
func JSON(v interface{}) Body { return jsonBody{v: v} }

func (b jsonBody) Encode() (io.Reader, string, error) {
	data, err := json.Marshal(b.v)
	if err != nil {
		return nil, "", errors.Wrap(err, "encode json body")
	}
	return bytes.NewReader(data), "application/json", nil
}

// Field is one text part of a multipart form. Numeric fields are sent as
// JSON numbers when the form goes out as JSON.
type Field struct {
	Name    string
	Value   string
	Numeric bool
}

// Attachment is a file part read from Path at encode time.
type Attachment struct {
	Field string
	Path  string
}

// Form is an ordered multipart/form-data body.
type Form struct {
	Fields []Field
	Files  []Attachment
}

// Set appends a text field. Empty values are kept so the server can clear a field.
func (f *Form) Set(name, value string) *Form {
	f.Fields = append(f.Fields, Field{Name: name, Value: value})
	return f
}

// SetInt appends a numeric field.
func (f *Form) SetInt(name string, n int) *Form {
	f.Fields = append(f.Fields, Field{Name: name, Value: strconv.Itoa(n), Numeric: true})
	return f
}

// Attach appends a file part.
func (f *Form) Attach(field, path string) *Form {
	f.Files = append(f.Files, Attachment{Field: field, Path: path})
	return f
}

// Value returns the first value for name.
func (f *Form) Value(name string) (string, bool) {
	for _, fl := range f.Fields {
		if fl.Name == name {
			return fl.Value, true
		}
	}
	return "", false
}

// FormBody encodes f as multipart/form-data when it carries files and as a
// JSON object of its fields otherwise.
func FormBody(f *Form) Body {
	if len(f.Files) > 0 {
		return Multipart(f)
	}
	return JSON(f.object())
}

// object keeps the first value of each field.
func (f *Form) object() map[string]interface{} {
	obj := make(map[string]interface{}, len(f.Fields))
	for _, fl := range f.Fields {
		if _, seen := obj[fl.Name]; seen {
			continue
		}
		if fl.Numeric {
			if n, err := strconv.Atoi(fl.Value); err == nil {
				obj[fl.Name] = n
				continue
			}
		}
		obj[fl.Name] = fl.Value
	}
	return obj
}

// AttachmentError reports a file part that could not be read from disk.
type AttachmentError struct {
	Field string
	Path  string
	Err   error
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("attachment %s (%s): %v", e.Field, e.Path, e.Err)
}

func (e *AttachmentError) Unwrap() error { return e.Err }

// Multipart encodes f as multipart/form-data.
func Multipart(f *Form) Body { return multipartBody{form: f} }

type multipartBody struct{ form *Form }

func (b multipartBody) Encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, fl := range b.form.Fields {
		if err := w.WriteField(fl.Name, fl.Value); err != nil {
			return nil, "", errors.Wrapf(err, "write field %s", fl.Name)
		}
	}
	for _, a := range b.form.Files {
		if err := writeFilePart(w, a); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "close multipart writer")
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFilePart(w *multipart.Writer, a Attachment) error {
	mt, err := mimetype.DetectFile(a.Path)
	if err != nil {
		return &AttachmentError{Field: a.Field, Path: a.Path, Err: err}
	}
	f, err := os.Open(a.Path)
	if err != nil {
		return &AttachmentError{Field: a.Field, Path: a.Path, Err: err}
	}
	defer f.Close()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(a.Field), escapeQuotes(filepath.Base(a.Path))))
	h.Set("Content-Type", mt.String())
	part, err := w.CreatePart(h)
	if err != nil {
		return errors.Wrapf(err, "create part %s", a.Field)
	}
	if _, err := io.Copy(part, f); err != nil {
		return &AttachmentError{Field: a.Field, Path: a.Path, Err: err}
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }
