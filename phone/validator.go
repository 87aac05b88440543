package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var (
	ErrEmpty     = errors.New("phone number is empty")
	ErrMalformed = errors.New("phone number must contain digits only")
)

const (
	region         = "ID"
	minLocalDigits = 10
	maxLocalDigits = 13
)

// Info is the outcome of validating one number.
type Info struct {
	Valid    bool   `json:"valid"`
	Operator string `json:"operator,omitempty"`
	// Card is the operator's product line, when the prefix is a known one.
	Card string `json:"card,omitempty"`
	// Local is the number rewritten to its 08xx form.
	Local string `json:"-"`
	E164  string `json:"-"`
}

type product struct {
	operator string
	card     string
}

// cards maps a four-digit 08xx prefix to its operator and product.
var cards = map[string]product{}

func register(operator string, byCard map[string][]string) {
	for card, list := range byCard {
		for _, p := range list {
			cards[p] = product{operator: operator, card: card}
		}
	}
}

func init() {
	register("Telkomsel", map[string][]string{
		"kartuHalo": {"0811"},
		"simPATI":   {"0812", "0813", "0821", "0822"},
		"Kartu As":  {"0823", "0852", "0853"},
		"by.U":      {"0851"},
	})
	register("Indosat", map[string][]string{
		"Matrix":  {"0814", "0815", "0816", "0855"},
		"IM3":     {"0856", "0857"},
		"Mentari": {"0858"},
	})
	register("XL", map[string][]string{
		"XL": {"0817", "0818", "0819", "0859", "0877", "0878"},
	})
	register("Axis", map[string][]string{
		"Axis": {"0831", "0832", "0833", "0838"},
	})
	register("Three", map[string][]string{
		"3": {"0895", "0896", "0897", "0898", "0899"},
	})
	register("Smartfren", map[string][]string{
		"Smartfren": {"0881", "0882", "0883", "0884", "0885", "0886", "0887", "0888", "0889"},
	})
}

// Validator is stateless and safe for concurrent use.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns an error only for input that is not a number at all.
// A number is valid when libphonenumber classifies it as an Indonesian mobile
// number and an operator is known for it. Everything else comes back with
// Valid false.
func (v *Validator) Validate(number string) (Info, error) {
	if number == "" {
		return Info{}, ErrEmpty
	}

	local, err := toLocal(number)
	if err != nil {
		return Info{}, err
	}

	info := Info{Local: local}
	if !strings.HasPrefix(local, "0") || len(local) < minLocalDigits || len(local) > maxLocalDigits {
		return info, nil
	}

	num, err := phonenumbers.Parse(local, region)
	if err != nil {
		return info, nil
	}
	if !phonenumbers.IsValidNumberForRegion(num, region) {
		return info, nil
	}
	switch phonenumbers.GetNumberType(num) {
	case phonenumbers.MOBILE, phonenumbers.FIXED_LINE_OR_MOBILE:
	default:
		return info, nil
	}

	if p, ok := cards[local[:4]]; ok {
		info.Operator = p.operator
		info.Card = p.card
	} else if name, err := phonenumbers.GetCarrierForNumber(num, "en"); err == nil {
		info.Operator = name
	}
	if info.Operator == "" {
		return info, nil
	}

	info.Valid = true
	info.E164 = phonenumbers.Format(num, phonenumbers.E164)
	return info, nil
}

// toLocal rewrites 62xx and +62xx to 08xx. Other numbers pass through and
// fail validation later.
func toLocal(number string) (string, error) {
	digits := strings.TrimPrefix(number, "+")
	if digits == "" {
		return "", ErrMalformed
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return "", ErrMalformed
		}
	}

	if strings.HasPrefix(digits, "62") {
		return "0" + digits[2:], nil
	}
	return digits, nil
}
