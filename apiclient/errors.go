package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	apperrors "github.com/jrsteele09/go-rental-storefront/internal/errors"
)

var (
	// ErrSessionExpired is returned when a 401 could not be recovered by a
	// token refresh. The session has been cleared by the time it is seen.
	ErrSessionExpired = apperrors.ErrSessionExpired

	// ErrNetwork wraps transport failures where no response was received.
	ErrNetwork = errors.New("backend unreachable")

	// ErrRequest wraps failures building the outgoing request.
	ErrRequest = errors.New("invalid backend request")

	// ErrUnknownEnvelope is returned when a list response has none of the
	// accepted shapes.
	ErrUnknownEnvelope = errors.New("unrecognised list envelope")
)

// Kind groups backend failures by how the presentation layer treats them.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindServer
	KindNetwork
	KindSessionExpired
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	case KindSessionExpired:
		return "session_expired"
	default:
		return "unknown"
	}
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	// Message is the backend's top level message (detail, error or message).
	Message string
	// Fields holds per-field validation messages from a 4xx body.
	Fields map[string][]string
	Body   []byte
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

func (e *APIError) Kind() Kind {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return KindUnauthenticated
	case e.StatusCode == http.StatusForbidden:
		return KindForbidden
	case e.StatusCode == http.StatusNotFound:
		return KindNotFound
	case e.StatusCode >= 500:
		return KindServer
	case e.StatusCode >= 400:
		return KindValidation
	default:
		return KindUnknown
	}
}

// FieldErrors flattens Fields into "field: message" lines, sorted by field.
func (e *APIError) FieldErrors() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []string
	for _, name := range names {
		for _, msg := range e.Fields[name] {
			out = append(out, name+": "+msg)
		}
	}
	return out
}

// KindOf classifies any error returned by the client.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, ErrSessionExpired) {
		return KindSessionExpired
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind()
	}
	if errors.Is(err, ErrNetwork) {
		return KindNetwork
	}
	return KindUnknown
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

var messageKeys = []string{"detail", "error", "message"}

func newAPIError(req *Request, status int, body []byte) *APIError {
	e := &APIError{
		StatusCode: status,
		Method:     req.Method,
		Path:       req.Path,
		Body:       body,
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 && !strings.HasPrefix(text, "<") {
			e.Message = text
		}
		return e
	}

	for _, key := range messageKeys {
		if raw, ok := obj[key]; ok {
			var s string
			if json.Unmarshal(raw, &s) == nil {
				e.Message = s
				delete(obj, key)
				break
			}
		}
	}

	for name, raw := range obj {
		msgs := fieldMessages(raw)
		if len(msgs) == 0 {
			continue
		}
		if e.Fields == nil {
			e.Fields = make(map[string][]string)
		}
		e.Fields[name] = msgs
	}
	return e
}

// fieldMessages accepts "msg" or ["msg", ...].
func fieldMessages(raw json.RawMessage) []string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return []string{s}
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return list
	}
	return nil
}
