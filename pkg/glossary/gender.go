package glossary

import (
	"encoding/json"
	"strings"
)

// Gender is the gender a character's pronouns should carry. The zero value is
// Unknown.
type Gender string

const (
	Unknown Gender = ""
	Male    Gender = "male"
	Female  Gender = "female"
)

// ParseGender maps free-form glossary values onto a Gender. Anything other than
// male or female is Unknown.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male":
		return Male
	case "female":
		return Female
	default:
		return Unknown
	}
}

// Definite reports whether g is male or female.
func (g Gender) Definite() bool {
	return g == Male || g == Female
}

// Opposite returns the other definite gender, or Unknown.
func (g Gender) Opposite() Gender {
	switch g {
	case Male:
		return Female
	case Female:
		return Male
	default:
		return Unknown
	}
}

func (g Gender) String() string {
	if g == Unknown {
		return "unknown"
	}
	return string(g)
}

func (g *Gender) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// non-string values (null, numbers) carry no gender
		*g = Unknown
		return nil
	}
	*g = ParseGender(s)
	return nil
}
