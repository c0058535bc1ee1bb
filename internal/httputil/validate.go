package httputil

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator is shared by handlers; field names come from the `query` or `json` tag.
var Validator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"query", "json"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// ValidationError answers 422 with {"error": ...} describing the first failed field.
func ValidationError(log *slog.Logger, w http.ResponseWriter, err error) {
	msg := "invalid request"
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			msg = fmt.Sprintf("%s is required", fe.Field())
		default:
			msg = fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
		}
	}
	log.Warn("validation failed", "err", err)
	WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": msg})
}
