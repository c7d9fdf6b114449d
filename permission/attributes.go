package permission

// Attribute names used by the profile store and the critical-attribute
// handler. These are the wire names the identity provider and profile store
// agree on; everything past this boundary is typed.
const (
	AttrRole             = "role"
	AttrDisplayName      = "display_name"
	AttrEmail            = "email"
	AttrOperatorApproved = "provider_is_approved"
	AttrPromoterApproved = "promoter_is_approved"
)

// Attributes is the typed form of the profile attribute map.
type Attributes struct {
	Role        string
	DisplayName string
	Email       string

	// OperatorApproved is fail-closed: set only when the raw value passed
	// ApprovedValue.
	OperatorApproved bool

	// PromoterApproved defaults to true; only an explicit negative value
	// ("false", or any value other than the literal true) recorded under
	// AttrPromoterApproved turns it off.
	PromoterApproved bool
}

// ApprovedValue reports whether a raw approval attribute counts as approved.
// Exactly the boolean true and the string "true" qualify; absence, false,
// "false", "True", "1", and every other representation do not.
func ApprovedValue(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true"
	default:
		return false
	}
}

// ParseAttributes converts the raw attribute map fetched from the profile
// store into a typed Attributes. Unknown keys are ignored.
func ParseAttributes(raw map[string]string) Attributes {
	attrs := Attributes{
		Role:        raw[AttrRole],
		DisplayName: raw[AttrDisplayName],
		Email:       raw[AttrEmail],
	}

	attrs.OperatorApproved = ApprovedValue(raw[AttrOperatorApproved])

	if v, ok := raw[AttrPromoterApproved]; ok {
		attrs.PromoterApproved = ApprovedValue(v)
	} else {
		attrs.PromoterApproved = true
	}

	return attrs
}
