package permission

// Set is the capability set derived for one validated caller. IsApproved is
// meaningful only for roles behind the approval gate (operator, promoter);
// it is true unconditionally for admin and traveler so callers can test it
// without switching on role.
type Set struct {
	Role            Role
	IsApproved      bool
	InRequiredGroup bool

	CanAccessAdmin    bool
	CanCreateListings bool
	CanManageContent  bool
	CanPublishContent bool
}

// Build derives the capability set for a role. inRequiredGroup is the
// caller's group membership for the role's required group (see
// [InRequiredGroup]); attrs are the parsed profile attributes.
//
// Rules:
//   - admin: every capability; InRequiredGroup mirrors the membership claim
//     but does not gate anything.
//   - operator: write capabilities only when approved AND in group.
//   - promoter: approved by default unless the profile says otherwise;
//     CanManageContent always, CanPublishContent behind the same
//     approved-and-in-group gate as operator writes.
//   - traveler: no gating, no write capabilities, InRequiredGroup always true.
func Build(role Role, inRequiredGroup bool, attrs Attributes) Set {
	switch role {
	case RoleAdmin:
		return Set{
			Role:              RoleAdmin,
			IsApproved:        true,
			InRequiredGroup:   inRequiredGroup,
			CanAccessAdmin:    true,
			CanCreateListings: true,
			CanManageContent:  true,
			CanPublishContent: true,
		}
	case RoleOperator:
		gate := attrs.OperatorApproved && inRequiredGroup
		return Set{
			Role:              RoleOperator,
			IsApproved:        attrs.OperatorApproved,
			InRequiredGroup:   inRequiredGroup,
			CanCreateListings: gate,
			CanManageContent:  gate,
			CanPublishContent: gate,
		}
	case RolePromoter:
		return Set{
			Role:              RolePromoter,
			IsApproved:        attrs.PromoterApproved,
			InRequiredGroup:   inRequiredGroup,
			CanManageContent:  true,
			CanPublishContent: attrs.PromoterApproved && inRequiredGroup,
		}
	default:
		return Set{
			Role:            RoleTraveler,
			IsApproved:      true,
			InRequiredGroup: true,
		}
	}
}
