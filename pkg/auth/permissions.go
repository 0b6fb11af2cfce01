package auth

// CanMutate reports whether the principal may modify or cancel a booking
// owned by ownerID. Admins always may; everyone else only their own.
func CanMutate(p Principal, ownerID int64) bool {
	return p.IsAdmin() || p.ID == ownerID
}

// CanCreateFor reports whether the principal may create a booking on
// behalf of targetUserID.
func CanCreateFor(p Principal, targetUserID int64) bool {
	return p.IsAdmin() || p.ID == targetUserID
}

// ForceApplies reports whether a requested force override is honored.
// Only admins get the override; a force flag from anyone else is ignored
// without error rather than rejected.
func ForceApplies(p Principal, force bool) bool {
	return force && p.IsAdmin()
}
