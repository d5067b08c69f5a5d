package helpers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Validator lets request DTOs declare their own field rules. Validate
// returns one message per violation; empty means the DTO is acceptable.
type Validator interface {
	Validate() []string
}

// DecodeAndValidate strictly decodes the JSON body into dest (unknown fields
// are rejected) and runs the DTO's Validate rules when it has any. On
// failure the 400 response is already written and false is returned, so
// handlers bail out with a bare return.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body: "+err.Error())
		return false
	}
	v, ok := dest.(Validator)
	if !ok {
		return true
	}
	if violations := v.Validate(); len(violations) > 0 {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, strings.Join(violations, "; "))
		return false
	}
	return true
}
