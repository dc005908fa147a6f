package server

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-rental-storefront/apiclient"
	"github.com/jrsteele09/go-rental-storefront/internal/validation"
)

const (
	maxFormBytes   = 1 << 20
	maxUploadBytes = 64 << 20
	photoField     = "images"
)

// formReader reads typed values from a parsed form and collects conversion
// failures as field errors.
type formReader struct {
	values url.Values
	errs   validation.Errors
}

func newFormReader(values url.Values) *formReader {
	return &formReader{values: values, errs: validation.Errors{}}
}

func (f *formReader) text(name string) string {
	return strings.TrimSpace(f.values.Get(name))
}

func (f *formReader) number(name string) int {
	raw := f.text(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		f.errs.Add(name, "must be a whole number")
	}
	return v
}

func (f *formReader) decimal(name string) float64 {
	raw := strings.ReplaceAll(f.text(name), ",", "")
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		f.errs.Add(name, "must be a number")
	}
	return v
}

// checked treats a checkbox as true when present with any value but "false".
func (f *formReader) checked(name string) bool {
	if _, ok := f.values[name]; !ok {
		return false
	}
	switch strings.ToLower(f.text(name)) {
	case "false", "0", "off":
		return false
	}
	return true
}

// err returns the conversion failures, or nil.
func (f *formReader) err() error {
	if len(f.errs) == 0 {
		return nil
	}
	return f.errs
}

// parseForm parses a urlencoded body.
func parseForm(w http.ResponseWriter, r *http.Request) (*formReader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("[server parseForm] %w", err)
	}
	return newFormReader(r.PostForm), nil
}

// parseMultipart parses a listing form and reads the uploaded photos into
// memory.
func parseMultipart(w http.ResponseWriter, r *http.Request) (*formReader, []apiclient.File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxFormBytes); err != nil {
		return nil, nil, fmt.Errorf("[server parseMultipart] %w", err)
	}
	files, err := readFiles(r.MultipartForm.File[photoField])
	if err != nil {
		return nil, nil, err
	}
	return newFormReader(url.Values(r.MultipartForm.Value)), files, nil
}

func readFiles(headers []*multipart.FileHeader) ([]apiclient.File, error) {
	var files []apiclient.File
	for _, fh := range headers {
		if fh.Size == 0 && fh.Filename == "" {
			continue
		}
		content, err := readFile(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, apiclient.File{
			Field:       photoField,
			Name:        fh.Filename,
			ContentType: fileContentType(fh, content),
			Content:     content,
		})
	}
	return files, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("[server readFile] failed to open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("[server readFile] failed to read %s: %w", fh.Filename, err)
	}
	return content, nil
}

// fileContentType trusts the sniffed type over the browser supplied one.
func fileContentType(fh *multipart.FileHeader, content []byte) string {
	if sniffed := http.DetectContentType(content); sniffed != "application/octet-stream" {
		return sniffed
	}
	return fh.Header.Get("Content-Type")
}
