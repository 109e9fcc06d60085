package orderform

import (
	"regexp"
	"strings"
)

// Validation messages, shared verbatim with the original web form.
const (
	MsgSelectProduct = "Please select a product for all lines."
	MsgName          = "Please fill in your name."
	MsgEmail         = "Please enter a valid email address."
	MsgPhoneMissing  = "Please enter your phone number."
	MsgPhoneDigits   = "Phone number must be 10 digits."
)

// emailRe accepts the usual local@domain.tld shape and nothing fancier.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate runs the submission checks in their fixed order and returns the
// message of the first failing rule, or "" when the form may be submitted.
// Rules run strictly in order: product lines, name, email, phone presence,
// phone digit count.
func Validate(s State) string {
	for _, item := range s.Items {
		if strings.TrimSpace(item.ProductSelection) == "" {
			return MsgSelectProduct
		}
	}

	if strings.TrimSpace(s.Customer.Name) == "" {
		return MsgName
	}

	email := strings.TrimSpace(s.Customer.Email)
	if email == "" || !emailRe.MatchString(email) {
		return MsgEmail
	}

	phone := strings.TrimSpace(s.Customer.Phone)
	if phone == "" {
		return MsgPhoneMissing
	}
	if len(digitsOnly(phone)) != 10 {
		return MsgPhoneDigits
	}

	return ""
}

// digitsOnly strips every non-digit character, so "071-234 5678" and
// "0712345678" normalize identically.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
