package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// PaymentInstrument is the card entered on the checkout form. It lives for one
// request and is never persisted.
type PaymentInstrument struct {
	CardNumber     string   `json:"card_number" validate:"required,number,min=13,max=19"`
	ExpiryMonth    string   `json:"expiry_month" validate:"required,number,len=2"`
	ExpiryYear     string   `json:"expiry_year" validate:"required,number,len=2"`
	CVV            string   `json:"cvv" validate:"required,number,min=3,max=4"`
	CardHolder     string   `json:"card_holder" validate:"required,max=120"`
	BillingAddress *Address `json:"billing_address" validate:"omitempty"`
}

type Address struct {
	Line1      string `json:"line1" validate:"required,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=60"`
}

// ErrValidation is matched by every ValidationErrors value.
var ErrValidation = errors.New("checkout form is invalid")

// ValidationErrors maps a form field to a message for the visitor.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(fields, ", "))
}

func (v ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Normalized trims free text and removes whitespace from the card number.
func (p PaymentInstrument) Normalized() PaymentInstrument {
	out := p
	out.CardNumber = StripWhitespace(p.CardNumber)
	out.ExpiryMonth = strings.TrimSpace(p.ExpiryMonth)
	out.ExpiryYear = strings.TrimSpace(p.ExpiryYear)
	out.CVV = strings.TrimSpace(p.CVV)
	out.CardHolder = strings.TrimSpace(p.CardHolder)
	if p.BillingAddress != nil {
		a := *p.BillingAddress
		a.Line1 = strings.TrimSpace(a.Line1)
		a.City = strings.TrimSpace(a.City)
		a.State = strings.TrimSpace(a.State)
		a.PostalCode = strings.TrimSpace(a.PostalCode)
		a.Country = strings.TrimSpace(a.Country)
		out.BillingAddress = &a
	}
	return out
}

// Validate runs the structural checks on the normalized instrument.
// It returns nil or a ValidationErrors.
func (p PaymentInstrument) Validate() error {
	n := p.Normalized()
	err := validate.Struct(n)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ValidationErrors{"form": err.Error()}
	}

	out := ValidationErrors{}
	for _, fe := range verrs {
		key := fieldKey(fe.Namespace())
		if _, seen := out[key]; seen {
			continue
		}
		out[key] = message(key, fe)
	}
	return out
}

// fieldKey turns "PaymentInstrument.billing_address.city" into "billing_address.city".
func fieldKey(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(key string, fe validator.FieldError) string {
	switch key {
	case "card_number":
		if fe.Tag() == "required" {
			return "Card number is required"
		}
		return "Card number must be 13 to 19 digits"
	case "expiry_month":
		return "Expiry month must be two digits (MM)"
	case "expiry_year":
		return "Expiry year must be two digits (YY)"
	case "cvv":
		return "CVV must be 3 or 4 digits"
	case "card_holder":
		if fe.Tag() == "required" {
			return "Cardholder name is required"
		}
		return "Cardholder name is too long"
	}

	label := strings.ReplaceAll(strings.TrimPrefix(key, "billing_address."), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Billing %s is required", label)
	case "max":
		return fmt.Sprintf("Billing %s is too long", label)
	default:
		return fmt.Sprintf("Billing %s is invalid", label)
	}
}
