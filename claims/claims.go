package claims

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/tripora/authgate/permission"
)

// Claims is the decoded payload of a Tripora bearer credential.
//
// Role and Groups are the loosely-typed values the identity provider embeds;
// [Validator.Verify] converts them to a [permission.Role] at the boundary.
// ProfileUpdatedAt records when the profile attributes baked into this
// credential were last current; the session validator compares it against the
// out-of-band profile-update marker to detect stale credentials.
type Claims struct {
	DisplayName      string           `json:"name,omitempty"`
	Email            string           `json:"email,omitempty"`
	Role             string           `json:"role,omitempty"`
	Groups           []string         `json:"groups,omitempty"`
	ProfileUpdatedAt *jwt.NumericDate `json:"profile_updated_at,omitempty"`
	jwt.RegisteredClaims
}

// Report is the outcome of verifying one credential. Valid is false whenever
// Errors is non-empty. Claims is nil unless the token parsed and verified
// structurally; Role and UserID are meaningful only when Valid.
type Report struct {
	Valid    bool
	UserID   string
	Role     permission.Role
	Claims   *Claims
	Errors   []string
	Warnings []string
}
