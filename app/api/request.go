package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator"
)

// ErrInvalidJSON marks a body that is not valid JSON for the target type.
var ErrInvalidJSON = errors.New("invalid JSON body")

var validate = validator.New()

// DecodeJSON decodes the request body into dst and then checks the
// `validate` tags on dst. Decoding failures wrap ErrInvalidJSON; tag
// failures come back as validator.ValidationErrors.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return validate.Struct(dst)
}
