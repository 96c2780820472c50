package apiclient

import (
	"encoding/json"
	"net/http"
	"strings"

	"contentadmin/internal/resource"
)

// errorEnvelope covers the error shapes the content API sends:
// {"message": "..."}, {"msg": "..."}, {"error": "..."} and an optional
// "errors" member that is either an object keyed by field or a list of
// {field|path|param, message|msg} entries.
type errorEnvelope struct {
	Message string          `json:"message"`
	Msg     string          `json:"msg"`
	Error   string          `json:"error"`
	Errors  json.RawMessage `json:"errors"`
}

type fieldEntry struct {
	Field   string `json:"field"`
	Path    string `json:"path"`
	Param   string `json:"param"`
	Message string `json:"message"`
	Msg     string `json:"msg"`
}

// mapStatus converts a non-2xx response into a ClientError.
func mapStatus(status int, body []byte) *resource.ClientError {
	var env errorEnvelope
	_ = json.Unmarshal(body, &env)
	msg := firstNonEmpty(env.Message, env.Msg, env.Error)
	if msg == "" {
		msg = http.StatusText(status)
	}
	fields := parseFieldErrors(env.Errors)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return resource.UnauthorizedError(msg)
	case status == http.StatusNotFound:
		return resource.NotFoundError(msg)
	case (status == http.StatusBadRequest || status == http.StatusUnprocessableEntity) && len(fields) > 0:
		return resource.ValidationError(msg, fields)
	default:
		return resource.ServerError(status, msg)
	}
}

func parseFieldErrors(raw json.RawMessage) map[string]string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	out := map[string]string{}

	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asMap); err == nil {
		for k, v := range asMap {
			if s := fieldMessage(v); s != "" {
				out[k] = s
			}
		}
		return nilIfEmpty(out)
	}

	var asList []fieldEntry
	if err := json.Unmarshal(raw, &asList); err == nil {
		for _, e := range asList {
			name := firstNonEmpty(e.Field, e.Path, e.Param)
			if name == "" {
				continue
			}
			out[name] = firstNonEmpty(e.Message, e.Msg, "invalid")
		}
	}
	return nilIfEmpty(out)
}

// fieldMessage accepts "msg", ["msg", ...] or {"message": "msg"}.
func fieldMessage(v json.RawMessage) string {
	var s string
	if json.Unmarshal(v, &s) == nil {
		return s
	}
	var list []string
	if json.Unmarshal(v, &list) == nil {
		return strings.Join(list, "; ")
	}
	var e fieldEntry
	if json.Unmarshal(v, &e) == nil {
		return firstNonEmpty(e.Message, e.Msg)
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func nilIfEmpty(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	return m
}
