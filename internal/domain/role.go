/**
 * @description
 * This file models platform roles as a closed set with an explicit capability
 * table. A user's role string is resolved into capabilities once, at the API
 * boundary; handlers and services test capabilities rather than re-branching
 * on role strings.
 */

package domain

// Role is one of the closed set of platform roles.
type Role string

const (
	RoleFounder      Role = "founder"
	RoleInvestor     Role = "investor"
	RoleCollaborator Role = "collaborator"
	RoleAdmin        Role = "admin"
)

// Capability names a single permitted action.
type Capability string

const (
	CapCreateProject     Capability = "create_project"
	CapInvest            Capability = "invest"
	CapApplyToProject    Capability = "apply_to_project"
	CapReviewRequests    Capability = "review_requests"
	CapViewPlatformStats Capability = "view_platform_stats"
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleFounder: {
		CapCreateProject:  true,
		CapReviewRequests: true,
	},
	RoleInvestor: {
		CapInvest: true,
	},
	RoleCollaborator: {
		CapApplyToProject: true,
	},
	RoleAdmin: {
		CapCreateProject:     true,
		CapInvest:            true,
		CapApplyToProject:    true,
		CapReviewRequests:    true,
		CapViewPlatformStats: true,
	},
}

// ParseRole maps a raw role claim to a Role. Unknown strings resolve to an
// empty role with no capabilities.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleFounder, RoleInvestor, RoleCollaborator, RoleAdmin:
		return Role(raw), true
	}
	return "", false
}

// Can reports whether the role grants the capability.
func (r Role) Can(c Capability) bool {
	caps, ok := roleCapabilities[r]
	if !ok {
		return false
	}
	return caps[c]
}
