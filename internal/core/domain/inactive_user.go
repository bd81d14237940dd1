package domain

// InactiveUser describes one idle account produced by the inactive-user
// query. Username is never blank.
type InactiveUser struct {
	Username        string
	UserStoreDomain string
	Email           string
}

// ActivityWindow bounds an idle-account query. Values are epoch-second
// strings. An empty ExcludeBefore selects the single-bound mode; when both
// bounds are set, ExcludeBefore must denote the earlier instant.
type ActivityWindow struct {
	InactiveAfter string
	ExcludeBefore string
}

// Bounded reports whether the window carries a lower bound.
func (w ActivityWindow) Bounded() bool {
	return w.ExcludeBefore != ""
}
