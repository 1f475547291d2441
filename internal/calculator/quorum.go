package calculator

// RequiredApprovals returns the number of distinct approvals needed to
// authorize an expense in a group of memberCount members: ceil(memberCount / 2).
func RequiredApprovals(memberCount int) int {
	if memberCount <= 0 {
		return 0
	}
	return (memberCount + 1) / 2
}

// IsAuthorized reports whether approvalCount reaches quorum for memberCount members.
func IsAuthorized(approvalCount, memberCount int) bool {
	return approvalCount >= RequiredApprovals(memberCount)
}
