package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrymomot/billingkit/pkg/environment"
)

const maxBodyBytes = 1 << 20

type envelope struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Data: data})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	f := AsFailure(err)
	body := &errorBody{Code: f.Code, Message: f.Message}
	if environment.FromContext(r.Context()).ExposeErrors() && f.Err != nil {
		body.Detail = f.Err.Error()
	}
	writeJSON(w, statusOf(f.Code), envelope{Error: body})
}

func writeStatusError(w http.ResponseWriter, status int, code Code, message string) {
	writeJSON(w, status, envelope{Error: &errorBody{Code: code, Message: message}})
}

func statusOf(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeInvalidCode, CodeUnknownResource, CodeUnknownCounter, CodeInvalidAmount:
		return http.StatusUnprocessableEntity
	case CodeAlreadyRedeemed, CodeConflict:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusServiceUnavailable
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.Join(ErrInvalidRequest, errors.New("request body is empty"))
		}
		return errors.Join(ErrInvalidRequest, fmt.Errorf("decode body: %w", err))
	}
	return nil
}
