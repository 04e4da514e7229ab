package make_opportunity_from_lead_form

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/m04kA/SMC-CRM/internal/domain"
)

// validateRequest нормализует и проверяет данные формы
func validateRequest(req *Request) error {
	req.Sender = strings.ToLower(strings.TrimSpace(req.Sender))
	req.Subject = strings.TrimSpace(req.Subject)
	req.FullName = strings.TrimSpace(req.FullName)
	req.MobileNo = strings.TrimSpace(req.MobileNo)

	if req.Sender == "" {
		return fmt.Errorf("%w: Please enter your email address", ErrInvalidInput)
	}
	if err := domain.ValidateEmail(req.Sender); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, domain.ValidationMessage(err))
	}
	if req.Subject == "" {
		req.Subject = DefaultSubject
	}
	return nil
}

// nameFromEmail имя лида из локальной части адреса: "john.doe@x" -> "John.Doe"
func nameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")

	var b strings.Builder
	upper := true
	for _, r := range local {
		if !unicode.IsLetter(r) {
			b.WriteRune(r)
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		upper = false
	}
	return b.String()
}
