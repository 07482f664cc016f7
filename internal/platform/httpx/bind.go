package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

var validate = validator.New()

// Bind decodes the JSON body into target and validates its struct tags.
// Failures are reported as shared.ErrValidation.
func Bind(r *http.Request, target any) error {
	if err := DecodeJSON(r, target); err != nil {
		return shared.Validationf("malformed request body: %v", err)
	}
	if err := validate.Struct(target); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return shared.Validationf("%v", err)
		}
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
		return shared.Validationf("%s", strings.Join(msgs, "; "))
	}
	return nil
}

// RequireActor returns the caller identity placed in context by middleware,
// answering 401 when it is missing.
func RequireActor(w http.ResponseWriter, r *http.Request) (internalShared.Actor, bool) {
	actor, ok := internalShared.ActorFromContext(r.Context())
	if !ok || actor.ID == 0 || actor.CompanyID == 0 {
		Problem(w, http.StatusUnauthorized, "Unauthorized", "actor and company identity required")
		return internalShared.Actor{}, false
	}
	return actor, true
}
