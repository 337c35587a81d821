package httpapi

import (
	"encoding/json"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// ErrorBody is the JSON body written for failed requests.
type ErrorBody struct {
	Error      string            `json:"error"`
	TextCode   string            `json:"text_code,omitempty"`
	Validation map[string]string `json:"validation,omitempty"`
}

// StatusFor maps an error category onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case goerrors.IsCategory(err, goerrors.CategoryValidation), goerrors.IsCategory(err, goerrors.CategoryBadInput):
		return http.StatusBadRequest
	case goerrors.IsCategory(err, goerrors.CategoryNotFound):
		return http.StatusNotFound
	case goerrors.IsCategory(err, goerrors.CategoryConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse converts err into its status code and JSON body.
func ErrorResponse(err error) (int, ErrorBody) {
	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	body := ErrorBody{Error: err.Error()}
	if mapped != nil {
		body.TextCode = mapped.TextCode
		if len(mapped.ValidationErrors) > 0 {
			body.Validation = mapped.ValidationMap()
		}
	}
	return StatusFor(err), body
}

func writeError(w http.ResponseWriter, err error) {
	status, body := ErrorResponse(err)
	writeJSON(w, status, body)
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, ErrorBody{Error: err.Error(), TextCode: "BAD_REQUEST"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
