package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	contentTypeJSON     = "application/json"
)

// Request describes one outgoing backend call. Body is nil, a *Form for
// multipart uploads, or any value that encodes to JSON.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   any

	// SkipRefresh returns a 401 to the caller without a refresh attempt. Set
	// it on credential exchanges, where a 401 means bad credentials.
	SkipRefresh bool

	// retried is set once the single 401 retry has been used.
	retried bool
}

// Retried reports whether the request already used its refresh retry.
func (r *Request) Retried() bool {
	return r.retried
}

// Field is a text part of a multipart form.
type Field struct {
	Name  string
	Value string
}

// File is a file part of a multipart form. The content is held in memory so
// the form can be encoded again when the request is retried.
type File struct {
	Field       string
	Name        string
	ContentType string
	Content     []byte
}

// Form is a multipart/form-data payload, used for listing photo uploads.
type Form struct {
	Fields []Field
	Files  []File
}

func NewForm() *Form {
	return &Form{}
}

// Set appends a text field. Repeated names are kept in order.
func (f *Form) Set(name, value string) *Form {
	f.Fields = append(f.Fields, Field{Name: name, Value: value})
	return f
}

func (f *Form) AddFile(file File) *Form {
	f.Files = append(f.Files, file)
	return f
}

// PrepareRequest applies the outgoing interceptor to req: a multipart body
// drops any preset Content-Type so the encoder can supply the boundary, and a
// non-empty token becomes "Authorization: Bearer <token>". Nothing else on the
// request is touched.
func PrepareRequest(req *Request, token string) {
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	if _, ok := req.Body.(*Form); ok {
		req.Header.Del(headerContentType)
	}
	if token != "" {
		req.Header.Set(headerAuthorization, "Bearer "+token)
	}
}

// encodeBody returns the wire body and the content type it requires. An empty
// content type means the caller's header (if any) is kept.
func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *Form:
		return b.encode()
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("[apiclient encodeBody] failed to encode json: %w", err)
		}
		return bytes.NewReader(data), contentTypeJSON, nil
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (f *Form) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, field := range f.Fields {
		if err := w.WriteField(field.Name, field.Value); err != nil {
			return nil, "", fmt.Errorf("[apiclient Form] failed to write field %q: %w", field.Name, err)
		}
	}

	for _, file := range f.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(file.Field), quoteEscaper.Replace(file.Name)))
		ctype := file.ContentType
		if ctype == "" {
			ctype = "application/octet-stream"
		}
		h.Set(headerContentType, ctype)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("[apiclient Form] failed to create part %q: %w", file.Name, err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return nil, "", fmt.Errorf("[apiclient Form] failed to write part %q: %w", file.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("[apiclient Form] failed to close writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
