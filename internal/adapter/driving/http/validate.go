package httphandler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxJSONBody = 1 << 20

// newValidator returns a validator that reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON decodes the request body into dst and validates it. It writes
// the error response itself and returns false when the body is unusable.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			writeValidationError(w, validationDetails(verrs))
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// readRawObject reads a JSON object body for pass-through to Dify. An empty
// body reads as an empty object.
func readRawObject(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool) {
	var body json.RawMessage
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return json.RawMessage(`{}`), true
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if !isJSONObject(body) {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return nil, false
	}
	return body, true
}

// checkURL reports a validation failure for a non-blank value that is not a URL.
func (h *Handler) checkURL(field string, value *string, details map[string]string) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return
	}
	if err := h.validate.Var(*value, "url"); err != nil {
		details[field] = "url"
	}
}

// checkObject reports a validation failure for config values that are
// present but not a JSON object.
func checkObject(field string, raw json.RawMessage, details map[string]string) {
	if len(raw) == 0 || string(raw) == "null" {
		return
	}
	if !isJSONObject(raw) {
		details[field] = "object"
	}
}

func isJSONObject(raw json.RawMessage) bool {
	var obj map[string]json.RawMessage
	return json.Unmarshal(raw, &obj) == nil && obj != nil
}

func validationDetails(verrs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fe.Tag()
	}
	return details
}
