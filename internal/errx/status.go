package errx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// messageKeys are the payload keys treated as the top-level message rather
// than as a field.
var messageKeys = []string{"detail", "error", "message", "non_field_errors"}

// FromResponse builds an *Error from an HTTP status and the response body.
// Bodies in the usual REST framework shapes are decoded into Message and
// Fields; anything else is kept only in Payload.
func FromResponse(status int, body []byte) *Error {
	e := &Error{Kind: KindForStatus(status), Status: status}

	body = []byte(strings.TrimSpace(string(body)))
	if len(body) == 0 {
		e.Message = http.StatusText(status)
		return e
	}

	if json.Valid(body) {
		e.Payload = json.RawMessage(append([]byte(nil), body...))
		decodePayload(e, body)
	}

	if e.Message == "" && len(e.Fields) == 0 {
		e.Message = http.StatusText(status)
	}
	return e
}

// KindForStatus maps an HTTP status onto a Kind.
func KindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuthentication
	case status == http.StatusForbidden:
		return KindAuthorization
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 400 && status < 500:
		return KindRejected
	default:
		return KindServer
	}
}

func decodePayload(e *Error, body []byte) {
	var str string
	if err := json.Unmarshal(body, &str); err == nil {
		e.Message = str
		return
	}

	var list []any
	if err := json.Unmarshal(body, &list); err == nil {
		e.Message = strings.Join(stringsOf(list), ", ")
		return
	}

	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return
	}

	for _, k := range messageKeys {
		if v, ok := obj[k]; ok {
			if msgs := stringsOf(v); len(msgs) > 0 && e.Message == "" {
				e.Message = strings.Join(msgs, ", ")
			}
			delete(obj, k)
		}
	}

	for k, v := range obj {
		msgs := stringsOf(v)
		if len(msgs) == 0 {
			continue
		}
		if e.Fields == nil {
			e.Fields = make(map[string][]string, len(obj))
		}
		e.Fields[k] = msgs
	}
}

func stringsOf(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, x := range t {
			out = append(out, stringsOf(x)...)
		}
		return out
	case map[string]any:
		out := make([]string, 0, len(t))
		for k, x := range t {
			for _, s := range stringsOf(x) {
				out = append(out, k+": "+s)
			}
		}
		return out
	default:
		return []string{fmt.Sprint(t)}
	}
}
