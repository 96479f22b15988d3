package list

// A User represents a member of a channel roster.
type User struct {
	Nick         string `json:"nick"`
	User         string `json:"user,omitempty"`
	Host         string `json:"host,omitempty"`
	Modes        string `json:"modes"`
	Prefixes     string `json:"prefixes"`
	PrefixedNick string `json:"prefixedNick"`
}

// HighestMode returns the highest mode, or 0 if there's none. Modes are in
// NAMES order, which servers send highest first.
func (user *User) HighestMode() rune {
	if len(user.Modes) == 0 {
		return 0
	}

	return rune(user.Modes[0])
}

func (user *User) updatePrefixedNick() {
	if len(user.Prefixes) == 0 {
		user.PrefixedNick = user.Nick
		return
	}

	user.PrefixedNick = string(user.Prefixes[0]) + user.Nick
}
