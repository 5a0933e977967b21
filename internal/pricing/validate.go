package pricing

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"go-reseller-ws/pkg/validator"
)

var (
	// Indonesian mobile numbers: +62 / 62 / 0, then 8, an operator digit and 7-10 more digits.
	phonePattern    = regexp.MustCompile(`^(\+62|62|0)8[1-9][0-9]{7,10}$`)
	usernamePattern = regexp.MustCompile(`^[a-z0-9_][a-z0-9_.]{1,28}[a-z0-9_]$`)
	phoneStripper   = strings.NewReplacer(" ", "", "-", "", ".", "")
)

const (
	nameMin    = 2
	nameMax    = 100
	addressMin = 10
	addressMax = 500
)

// ContactInfo is the buyer contact block captured at checkout.
type ContactInfo struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Address *string `json:"address,omitempty"`
}

func ValidatePrice(value int64) Result {
	var r Result
	if value < MinPrice || value > MaxPrice {
		r.add("price", CodePriceOutOfBounds,
			fmt.Sprintf("price must be between %d and %d", MinPrice, MaxPrice))
	}
	return r
}

// ValidateContactInfo checks format and length only; nothing is delivered or verified.
func ValidateContactInfo(info ContactInfo) Result {
	var r Result

	name := strings.TrimSpace(info.Name)
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		r.add("name", CodeRequired, "name is required")
	case n < nameMin:
		r.add("name", CodeTooShort, fmt.Sprintf("name must be at least %d characters", nameMin))
	case n > nameMax:
		r.add("name", CodeTooLong, fmt.Sprintf("name must be at most %d characters", nameMax))
	}

	email := strings.TrimSpace(info.Email)
	if email == "" {
		r.add("email", CodeRequired, "email is required")
	} else if !validator.ValidateVar(email, "email") {
		r.add("email", CodeInvalidFormat, "email is not a valid address")
	}

	r = r.Merge(ValidatePhone(info.Phone))

	if info.Address != nil {
		addr := strings.TrimSpace(*info.Address)
		switch n := utf8.RuneCountInString(addr); {
		case n < addressMin:
			r.add("address", CodeTooShort, fmt.Sprintf("address must be at least %d characters", addressMin))
		case n > addressMax:
			r.add("address", CodeTooLong, fmt.Sprintf("address must be at most %d characters", addressMax))
		}
	}

	return r
}

func ValidatePhone(phone string) Result {
	var r Result
	p := phoneStripper.Replace(strings.TrimSpace(phone))
	if p == "" {
		r.add("phone", CodeRequired, "phone is required")
	} else if !phonePattern.MatchString(p) {
		r.add("phone", CodeInvalidFormat, "phone must be an Indonesian mobile number (08xx, 628xx or +628xx)")
	}
	return r
}

// NormalizePhone returns the +62 form of a valid mobile number.
func NormalizePhone(phone string) (string, bool) {
	p := phoneStripper.Replace(strings.TrimSpace(phone))
	if !phonePattern.MatchString(p) {
		return "", false
	}
	switch {
	case strings.HasPrefix(p, "+62"):
		return p, true
	case strings.HasPrefix(p, "62"):
		return "+" + p, true
	default:
		return "+62" + p[1:], true
	}
}

// ValidateUsername checks a storefront handle: 3-30 of [a-z0-9_.], not starting or ending with a dot.
func ValidateUsername(username string) Result {
	var r Result
	switch n := len(username); {
	case n == 0:
		r.add("username", CodeRequired, "username is required")
	case n < 3:
		r.add("username", CodeTooShort, "username must be at least 3 characters")
	case n > 30:
		r.add("username", CodeTooLong, "username must be at most 30 characters")
	case !usernamePattern.MatchString(username):
		r.add("username", CodeInvalidFormat, "username may only contain lowercase letters, digits, '_' and '.'")
	}
	return r
}
