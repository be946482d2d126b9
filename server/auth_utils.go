package server

import (
	"net/http"
	"net/url"
)

// redirectSuccess sends the browser to path. htmx requests get HX-Redirect instead of a 303.
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	redirectTo(w, r, path)
}

// redirectWithError sends the browser to path with errorMsg in the error query parameter,
// which the login page shows once.
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	target := path + "?" + url.Values{"error": {errorMsg}}.Encode()
	redirectTo(w, r, target)
}

func redirectTo(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
