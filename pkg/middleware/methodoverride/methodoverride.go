package methodoverride

import (
	"mime"
	"net/http"
	"strings"
)

const (
	// FieldName is read from the query string first, then from the form body.
	FieldName = "_method"
	// HeaderName lets scripted clients override without touching the body.
	HeaderName = "X-HTTP-Method-Override"
)

// Wrap rewrites POST requests that carry an override to PUT, PATCH or DELETE
// before they reach the router. HTML forms can only submit GET and POST, so
// this has to run ahead of route matching rather than as gin middleware.
func Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if method := lookup(r); method != "" {
				// net/http only reads bodies for POST, PUT and PATCH.
				if isURLEncoded(r) {
					_ = r.ParseForm()
				}
				r.Method = method
			}
		}
		next.ServeHTTP(w, r)
	})
}

func lookup(r *http.Request) string {
	method := r.URL.Query().Get(FieldName)
	if method == "" {
		method = r.Header.Get(HeaderName)
	}
	if method == "" && isURLEncoded(r) {
		if err := r.ParseForm(); err == nil {
			method = r.PostForm.Get(FieldName)
		}
	}

	method = strings.ToUpper(strings.TrimSpace(method))
	switch method {
	case http.MethodPut, http.MethodPatch, http.MethodDelete:
		return method
	}
	return ""
}

func isURLEncoded(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && ct == "application/x-www-form-urlencoded"
}
