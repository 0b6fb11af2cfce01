package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	apperrors "roomly/pkg/errors"
)

// DecodeJSON reads a JSON body into dst. A missing or empty body leaves
// dst at its zero value rather than failing, so handlers can apply their
// own required-field checks.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.Validation("invalid JSON body")
	}
	return nil
}

// PathID parses a numeric route parameter.
func PathID(ps httprouter.Params, name string) (int64, error) {
	id, err := strconv.ParseInt(ps.ByName(name), 10, 64)
	if err != nil {
		return 0, apperrors.Validation(name + " must be integer")
	}
	return id, nil
}
