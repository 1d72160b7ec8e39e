package host

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// RestPrefix is the URL prefix REST routes are served under.
const RestPrefix = "/wp-json"

// MaxBodyBytes caps the size of a request body.
const MaxBodyBytes = 1 << 20

// ServeHTTP exposes AJAX actions at /admin-ajax?action=<name> and REST routes
// at /wp-json/<namespace><route>. Request values come from the query string,
// form bodies or flat JSON object bodies.
func (h *Host) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	}
	params, err := requestParams(r)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, map[string]string{"message": err.Error()})
		return
	}

	switch {
	case r.URL.Path == "/admin-ajax":
		action := params["action"]
		delete(params, "action")
		resp, err := h.HandleAjax(action, true, params)
		if err != nil {
			writeJSON(w, http.StatusNotFound, Response{Success: false, Data: map[string]string{"message": err.Error()}})
			return
		}
		writeJSON(w, http.StatusOK, resp)

	case strings.HasPrefix(r.URL.Path, RestPrefix+"/"):
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed"})
			return
		}
		body, status, err := h.HandleRest(strings.TrimPrefix(r.URL.Path, RestPrefix), params)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": err.Error()})
			return
		}
		writeJSON(w, status, body)

	default:
		http.NotFound(w, r)
	}
}

func requestParams(r *http.Request) (map[string]string, error) {
	params := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	if r.Body == nil || r.Method == http.MethodGet {
		return params, nil
	}

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var body map[string]any
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			return nil, fmt.Errorf("decode json body: %w", err)
		}
		for k, v := range body {
			params[k] = fmt.Sprint(v)
		}
		return params, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	for k, v := range r.PostForm {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	return params, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
