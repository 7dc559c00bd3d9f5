// Provides middleware for standardizing HTTP handlers.

package server

import (
	"bytes"
	"context"
	"encoding"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"

	"github.com/signum-hq/signum/internal/server/dto"
	"github.com/signum-hq/signum/internal/server/handlers"
	"github.com/signum-hq/signum/internal/server/ratelimit"
	"github.com/signum-hq/signum/internal/server/reqctx"
)

// checkRateLimit checks the rate limit and wraps the response writer to
// carry the limit headers. It returns false when the request was rejected.
func checkRateLimit(w http.ResponseWriter, r *http.Request, limiters *ratelimit.Limiters) (http.ResponseWriter, bool) {
	tier := limiters.Match(r.Method, r.URL.Path)
	if tier == nil {
		return w, true
	}
	result := tier.Limiter.Allow(ratelimit.BuildKey(reqctx.GetClientIP(r), tier.Name))
	w = ratelimit.NewResponseWriter(w, result)
	if !result.Allowed {
		slog.WarnContext(r.Context(), "Rate limited", "tier", tier.Name, "ip", reqctx.GetClientIP(r))
		writeError(w, dto.RateLimitExceeded(int(result.RetryAfter.Seconds())))
		return w, false
	}
	return w, true
}

// readAndDecodeBody reads the request body with size limit and decodes JSON into input.
// Returns false if an error occurred and was written to the response.
func readAndDecodeBody[In any](ctx context.Context, w http.ResponseWriter, r *http.Request, input *In, cfg *handlers.Config) bool {
	if cfg != nil && cfg.Quotas.MaxRequestBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, cfg.Quotas.MaxRequestBodyBytes)
	}
	body, err := io.ReadAll(r.Body)
	if err2 := r.Body.Close(); err == nil {
		err = err2
	}
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, dto.PayloadTooLarge(maxBytesErr.Limit))
			return false
		}
		slog.ErrorContext(ctx, "Failed to read request body", "err", err)
		writeError(w, dto.BadRequest("Failed to read request body"))
		return false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return true
	}
	d := json.NewDecoder(bytes.NewReader(body))
	d.DisallowUnknownFields()
	if err := d.Decode(input); err != nil {
		slog.WarnContext(ctx, "Failed to decode request body", "err", err)
		writeError(w, dto.NewAPIError(http.StatusBadRequest, dto.ErrorCodeInvalidFormat, "Invalid request body").Wrap(err))
		return false
	}
	return true
}

// writeJSONResponse writes a JSON response or error response.
func writeJSONResponse[Out any](ctx context.Context, w http.ResponseWriter, output *Out, err error) {
	if err != nil {
		writeHandlerError(ctx, w, err, http.StatusInternalServerError, dto.ErrorCodeInternal)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(output); err != nil {
		slog.ErrorContext(ctx, "Failed to encode response", "err", err)
	}
}

// Wrap wraps a handler function to work as an http.Handler.
// The function must have signature: func(context.Context, *In) (*Out, error)
// where In can be unmarshalled from JSON and Out is a struct.
// Path parameters are extracted into struct fields tagged with `path:"name"`,
// query parameters into fields tagged with `query:"name"`.
// *In must implement dto.Validatable.
//
// Example:
//
//	type GetRunRequest struct {
//	    ID string `path:"id"`
//	}
//
//	func (h *RunHandler) GetRun(ctx context.Context, req *GetRunRequest) (*RunResponse, error)
func Wrap[In any, PtrIn interface {
	*In
	dto.Validatable
}, Out any](fn func(context.Context, PtrIn) (*Out, error), cfg *handlers.Config, limiters *ratelimit.Limiters) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w, ok := checkRateLimit(w, r, limiters)
		if !ok {
			return
		}

		input := new(In)
		if !readAndDecodeBody(ctx, w, r, input, cfg) {
			return
		}
		populatePathParams(r, input)
		populateQueryParams(r, input)

		if err := PtrIn(input).Validate(); err != nil {
			writeHandlerError(ctx, w, err, http.StatusBadRequest, dto.ErrorCodeValidationFailed)
			return
		}

		output, err := fn(ctx, PtrIn(input))
		writeJSONResponse(ctx, w, output, err)
	})
}

// WrapRaw applies the rate limit and the body limit to a raw handler.
func WrapRaw(fn http.HandlerFunc, cfg *handlers.Config, limiters *ratelimit.Limiters) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w, ok := checkRateLimit(w, r, limiters)
		if !ok {
			return
		}
		if cfg != nil && cfg.Quotas.MaxRequestBodyBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, cfg.Quotas.MaxRequestBodyBytes)
		}
		fn(w, r)
	})
}

// populatePathParams extracts path parameters from the request and populates
// struct fields tagged with `path:"paramName"`.
func populatePathParams(r *http.Request, input any) {
	elem, ok := structElem(input)
	if !ok {
		return
	}
	typ := elem.Type()
	for i := range typ.NumField() {
		tag := typ.Field(i).Tag.Get("path")
		if tag == "" {
			continue
		}
		if v := r.PathValue(tag); v != "" {
			setField(elem.Field(i), v)
		}
	}
}

// populateQueryParams extracts query parameters from the request and populates
// struct fields tagged with `query:"paramName"`.
func populateQueryParams(r *http.Request, input any) {
	elem, ok := structElem(input)
	if !ok {
		return
	}
	query := r.URL.Query()
	typ := elem.Type()
	for i := range typ.NumField() {
		tag := typ.Field(i).Tag.Get("query")
		if tag == "" {
			continue
		}
		if v := query.Get(tag); v != "" {
			setField(elem.Field(i), v)
		}
	}
}

func structElem(input any) (reflect.Value, bool) {
	val := reflect.ValueOf(input)
	if val.Kind() != reflect.Pointer || val.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	return val.Elem(), true
}

// setField sets a string, int or bool field, or any encoding.TextUnmarshaler.
// Unparsable values leave the field unchanged.
func setField(f reflect.Value, v string) {
	switch f.Kind() {
	case reflect.String:
		f.SetString(v)
	case reflect.Int, reflect.Int64:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.SetInt(n)
		}
	case reflect.Bool:
		if b, err := strconv.ParseBool(v); err == nil {
			f.SetBool(b)
		}
	default:
		if f.CanAddr() {
			if u, ok := f.Addr().Interface().(encoding.TextUnmarshaler); ok {
				_ = u.UnmarshalText([]byte(v))
			}
		}
	}
}

// writeHandlerError writes err with its own status, or the fallback status
// and code when err carries none.
func writeHandlerError(ctx context.Context, w http.ResponseWriter, err error, status int, code dto.ErrorCode) {
	var ews dto.ErrorWithStatus
	if errors.As(err, &ews) {
		status = ews.StatusCode()
		code = ews.Code()
	}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "Handler error", "err", err, "statusCode", status, "code", code)
	} else {
		slog.InfoContext(ctx, "Request rejected", "err", err, "statusCode", status, "code", code)
	}
	writeError(w, dto.NewAPIError(status, code, err.Error()).WithDetails(detailsOf(err)))
}

func detailsOf(err error) map[string]any {
	var ews dto.ErrorWithStatus
	if errors.As(err, &ews) {
		return ews.Details()
	}
	return nil
}

// writeError writes an APIError as a dto.ErrorResponse.
func writeError(w http.ResponseWriter, apiErr *dto.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.StatusCode())
	details := apiErr.Details()
	if len(details) == 0 {
		details = nil
	}
	response := dto.ErrorResponse{
		Error:   dto.ErrorDetails{Code: apiErr.Code(), Message: apiErr.Error()},
		Details: details,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode error response", "err", err)
	}
}
