package tracker

import (
	"net/http"
	"strconv"
	"strings"

	"codeberg.org/cookieless/beacon/internal/token"
)

// 200 when the client has new data to store, 304 when its cached copy is still valid
func (v Visitor) Status() int {
	if v.Changed {
		return http.StatusOK
	}

	return http.StatusNotModified
}

// builds the status, cache identity and body for the visitor.
// the body is only present on 200
func (v Visitor) Response(callback string) Response {
	resp := Response{
		Status: v.Status(),
		ETag:   v.Token,
	}

	if v.Changed {
		resp.Body = []byte(Script(callback, v.State))
	}

	return resp
}

// returns the callback name to use, falling back to DefaultCallback
func CallbackName(name string) string {
	if name == "" {
		return DefaultCallback
	}

	return name
}

// renders the JSONP snippet handing the visitor state to the named callback.
// values are numeric or alphanumeric so nothing is quoted or escaped
func Script(callback string, s token.State) string {
	callback = CallbackName(callback)

	var b strings.Builder

	b.WriteString("; typeof ")
	b.WriteString(callback)
	b.WriteString(" === 'function' && ")
	b.WriteString(callback)
	b.WriteString("({id: ")
	b.WriteString(s.ID)
	b.WriteString(",session: ")
	b.WriteString(strconv.FormatInt(s.Session, 10))
	b.WriteString(",lastSeen: ")
	b.WriteString(strconv.FormatInt(s.LastSeen, 10))
	b.WriteString("});")

	return b.String()
}
