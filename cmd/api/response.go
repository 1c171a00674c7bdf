package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/coverly/quotes/internal/logger"
	"github.com/coverly/quotes/internal/quote"
)

const maxBodyBytes = 1 << 20

type ctxKey int

const requestIDKey ctxKey = iota

func contextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

type envelope struct {
	Successful bool       `json:"successful"`
	Response   any        `json:"response,omitempty"`
	ErrorData  *errorData `json:"errorData,omitempty"`
}

type errorData struct {
	ErrorCode int               `json:"errorCode"`
	Message   string            `json:"message"`
	Data      map[string]string `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, response any) {
	writeJSON(w, http.StatusOK, envelope{Successful: true, Response: response})
}

// writeError classifies err and writes the error envelope. Internal errors are
// logged in full and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	var (
		typ    = quote.Classify(err)
		field  = quote.ErrorField(err)
		data   = &errorData{ErrorCode: typ.Code, Message: typ.Message()}
		reqLog = log.With("request_id", requestIDFrom(r.Context()), "path", r.URL.Path, "error_code", typ.Code)
	)

	if typ == quote.GeneralError {
		reqLog.Error("request failed", "error", err)
	} else {
		reqLog.Warn("request rejected", "error", err)
		data.Message = err.Error()
	}
	if field != "" {
		data.Data = map[string]string{"errorField": field}
	}

	writeJSON(w, typ.Status, envelope{ErrorData: data})
}

// decodeJSON reads a single JSON object into dst. An empty body is an error
// unless optional is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var (
			typeErr  *json.UnmarshalTypeError
			fieldErr *quote.FieldError
		)
		switch {
		case errors.Is(err, io.EOF) && optional:
			return nil
		case errors.Is(err, io.EOF):
			return fmt.Errorf("empty body: %w", quote.ErrMalformedRequest)
		case errors.As(err, &typeErr) && typeErr.Field != "":
			return quote.WithField(typeErr.Field, fmt.Errorf("%v: %w", err, quote.ErrMalformedRequest))
		case errors.As(err, &fieldErr):
			return quote.WithField(fieldErr.Field, fmt.Errorf("%v: %w", fieldErr.Err, quote.ErrMalformedRequest))
		default:
			return fmt.Errorf("%v: %w", err, quote.ErrMalformedRequest)
		}
	}
	return nil
}

func missing(field string) error {
	return quote.WithField(field, quote.ErrMissingField)
}
