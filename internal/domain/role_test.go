package domain

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		raw    string
		want   Role
		wantOK bool
	}{
		{"founder", RoleFounder, true},
		{"investor", RoleInvestor, true},
		{"collaborator", RoleCollaborator, true},
		{"admin", RoleAdmin, true},
		{"superuser", "", false},
		{"", "", false},
		{"Founder", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseRole(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Fatalf("ParseRole(%q) = (%q, %t), want (%q, %t)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestRoleCapabilities(t *testing.T) {
	tests := []struct {
		role Role
		cap  Capability
		want bool
	}{
		{RoleFounder, CapCreateProject, true},
		{RoleFounder, CapReviewRequests, true},
		{RoleFounder, CapInvest, false},
		{RoleInvestor, CapInvest, true},
		{RoleInvestor, CapCreateProject, false},
		{RoleCollaborator, CapApplyToProject, true},
		{RoleCollaborator, CapReviewRequests, false},
		{RoleAdmin, CapViewPlatformStats, true},
		{RoleAdmin, CapInvest, true},
		{Role(""), CapInvest, false},
		{Role("unknown"), CapCreateProject, false},
	}

	for _, tt := range tests {
		if got := tt.role.Can(tt.cap); got != tt.want {
			t.Fatalf("%q.Can(%q) = %t, want %t", tt.role, tt.cap, got, tt.want)
		}
	}
}
