package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"unicode/utf8"
)

type message map[string]any

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("ERROR: could not encode response: %v", err)
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, message{"OPS": "Route not found!"})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, message{"FAILED": "METHOD NOT ALLOWED!"})
}

func internalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, message{"ERROR": "INTERNAL ERROR!"})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, message{"error": msg})
}

// serverError reports a store failure. Timeouts get 504, everything else is
// logged and hidden behind the generic 500 body.
func serverError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		writeJSON(w, http.StatusGatewayTimeout, message{"error": "Request timed out"})
		return
	}
	log.Printf("ERROR: %s %s: %v", r.Method, r.URL.Path, err)
	internalError(w)
}

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// tooLong counts characters, not bytes, the way VARCHAR(n) does.
func tooLong(s string, max int) bool {
	return utf8.RuneCountInString(s) > max
}
