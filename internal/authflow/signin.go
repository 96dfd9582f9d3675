package authflow

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

var (
	countryCodePattern = regexp.MustCompile(`^\+[1-9][0-9]{0,3}$`)
	emailPattern       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneSeparators    = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
)

// SignInForm is the input of the sign-in and sign-up screens.
type SignInForm struct {
	Method      Method `json:"method"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	IsSignUp    bool   `json:"-"`
	Role        Role   `json:"-"`
}

// ValidationError lists the offending fields of a form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// Validate checks the form the way the screen does before submitting.
func (f SignInForm) Validate() error {
	fields := map[string]string{}

	switch f.Method {
	case MethodPhone:
		if !countryCodePattern.MatchString(strings.TrimSpace(f.CountryCode)) {
			fields["country_code"] = "select a valid country code"
		}
		digits := phoneSeparators.Replace(strings.TrimSpace(f.Phone))
		if !isDigits(digits) || len(digits) < 7 || len(digits) > 15 {
			fields["phone"] = "enter a valid phone number"
		}
	case MethodEmail:
		if !emailPattern.MatchString(strings.TrimSpace(f.Email)) {
			fields["email"] = "enter a valid email address"
		}
	default:
		fields["method"] = "choose phone or email"
	}

	if f.IsSignUp && strings.TrimSpace(f.DisplayName) == "" {
		fields["display_name"] = "name is required"
	}
	if f.Role != RoleConsumer && f.Role != RoleRestaurantPartner {
		fields["role"] = "unknown role"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Submit validates the form and returns the record to hand to the OTP screen.
func (f SignInForm) Submit(now time.Time) (PendingAuthRecord, error) {
	if err := f.Validate(); err != nil {
		return PendingAuthRecord{}, err
	}

	rec := PendingAuthRecord{
		Method:    f.Method,
		IsSignUp:  f.IsSignUp,
		Role:      f.Role,
		CreatedAt: now.UTC(),
	}
	if f.Method == MethodPhone {
		rec.Contact = strings.TrimSpace(f.CountryCode) + " " + phoneSeparators.Replace(strings.TrimSpace(f.Phone))
	} else {
		rec.Contact = strings.ToLower(strings.TrimSpace(f.Email))
	}
	if f.IsSignUp {
		rec.DisplayName = strings.TrimSpace(f.DisplayName)
	}
	return rec, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
