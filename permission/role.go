package permission

// Role is the closed enumeration of Tripora account kinds.
type Role uint8

const (
	// RoleTraveler is the end-user role. It is the default when neither a
	// role attribute nor a role group is present.
	RoleTraveler Role = iota
	// RolePromoter markets listings (also called influencer upstream).
	RolePromoter
	// RoleOperator supplies listings (also called provider upstream) and is
	// gated behind manual approval.
	RoleOperator
	// RoleAdmin has full marketplace access.
	RoleAdmin
)

// Identity-provider group names, consulted in priority order when no explicit
// role attribute is present.
const (
	GroupAdmins    = "admins"
	GroupOperators = "operators"
	GroupPromoters = "promoters"
	GroupTravelers = "travelers"
)

// String returns the canonical role name.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleOperator:
		return "operator"
	case RolePromoter:
		return "promoter"
	default:
		return "traveler"
	}
}

// ParseRole converts a role string from the identity provider into a Role.
// Upstream aliases ("provider" for operator, "influencer" for promoter,
// "user" for traveler) are accepted. The second return is false for values
// that match nothing.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "admin":
		return RoleAdmin, true
	case "operator", "provider":
		return RoleOperator, true
	case "promoter", "influencer":
		return RolePromoter, true
	case "traveler", "user":
		return RoleTraveler, true
	default:
		return RoleTraveler, false
	}
}

// RoleFromGroups resolves a role from group-membership claims, highest
// privilege first: admins > operators > promoters > travelers. The second
// return is false when no known group is present.
func RoleFromGroups(groups []string) (Role, bool) {
	member := make(map[string]bool, len(groups))
	for _, g := range groups {
		member[g] = true
	}
	switch {
	case member[GroupAdmins]:
		return RoleAdmin, true
	case member[GroupOperators]:
		return RoleOperator, true
	case member[GroupPromoters]:
		return RolePromoter, true
	case member[GroupTravelers]:
		return RoleTraveler, true
	default:
		return RoleTraveler, false
	}
}

// RequiredGroup returns the group a role must be a member of before its
// write capabilities activate. Travelers have no group requirement.
func RequiredGroup(r Role) (string, bool) {
	switch r {
	case RoleAdmin:
		return GroupAdmins, true
	case RoleOperator:
		return GroupOperators, true
	case RolePromoter:
		return GroupPromoters, true
	default:
		return "", false
	}
}

// InRequiredGroup reports whether the group claims satisfy the role's group
// requirement. Always true for travelers.
func InRequiredGroup(r Role, groups []string) bool {
	required, ok := RequiredGroup(r)
	if !ok {
		return true
	}
	for _, g := range groups {
		if g == required {
			return true
		}
	}
	return false
}
