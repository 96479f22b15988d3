package list

import (
	"sort"
	"strings"
	"sync"
)

// prefixModes maps NAMES prefixes to channel modes, highest rank first.
var prefixModes = []struct {
	prefix rune
	mode   rune
}{
	{'~', 'q'},
	{'&', 'a'},
	{'@', 'o'},
	{'%', 'h'},
	{'+', 'v'},
}

// The List of users in a channel. Users are keyed by nick, case-insensitively, and kept
// sorted by rank and then by nick.
type List struct {
	mutex sync.RWMutex
	users []*User
	index map[string]*User
}

// New creates an empty list.
func New() *List {
	return &List{
		users: make([]*User, 0, 64),
		index: make(map[string]*User, 64),
	}
}

// InsertFromNamesToken inserts using a NAMES token to get the nick, user, host and prefixes.
// The format is `"@+Nick!user@hostmask.example.com"`, where everything but the nick is optional.
func (list *List) InsertFromNamesToken(namestoken string) (ok bool) {
	user := User{}

	for i, ch := range namestoken {
		mode := modeOf(ch)
		if mode == 0 {
			namestoken = namestoken[i:]
			break
		}

		user.Prefixes += string(ch)
		user.Modes += string(mode)

		if i == len(namestoken)-1 {
			namestoken = ""
		}
	}

	split := strings.SplitN(namestoken, "!", 2)
	user.Nick = split[0]
	if len(split) == 2 {
		userhost := strings.SplitN(split[1], "@", 2)
		if len(userhost) == 2 {
			user.User = userhost[0]
			user.Host = userhost[1]
		}
	}

	return list.Insert(user)
}

// Insert a user. It returns false if the nick is empty or already in the list.
func (list *List) Insert(user User) (ok bool) {
	if user.Nick == "" {
		return false
	}

	user.Modes, user.Prefixes = sortModes(user.Modes)
	user.updatePrefixedNick()

	list.mutex.Lock()
	defer list.mutex.Unlock()

	key := strings.ToLower(user.Nick)
	if list.index[key] != nil {
		return false
	}

	list.users = append(list.users, &user)
	list.index[key] = &user
	list.sort()

	return true
}

// Rename renames a user. It returns false if there's no user by `from`, or if `to` is
// taken by someone else.
func (list *List) Rename(from, to string) (ok bool) {
	fromKey := strings.ToLower(from)
	toKey := strings.ToLower(to)

	list.mutex.Lock()
	defer list.mutex.Unlock()

	user := list.index[fromKey]
	if user == nil || to == "" {
		return false
	}
	if existing := list.index[toKey]; existing != nil && existing != user {
		return false
	}

	user.Nick = to
	user.updatePrefixedNick()

	delete(list.index, fromKey)
	list.index[toKey] = user
	list.sort()

	return true
}

// Remove a user from the list.
func (list *List) Remove(nick string) (ok bool) {
	list.mutex.Lock()
	defer list.mutex.Unlock()

	key := strings.ToLower(nick)
	user := list.index[key]
	if user == nil {
		return false
	}

	for i := range list.users {
		if list.users[i] == user {
			list.users = append(list.users[:i], list.users[i+1:]...)
			break
		}
	}
	delete(list.index, key)

	return true
}

// User gets a copy of the user by nick.
func (list *List) User(nick string) (u User, ok bool) {
	list.mutex.RLock()
	defer list.mutex.RUnlock()

	user := list.index[strings.ToLower(nick)]
	if user == nil {
		return User{}, false
	}

	return *user, true
}

// Users gets a copy of the users in the list's current order.
func (list *List) Users() []User {
	list.mutex.RLock()
	defer list.mutex.RUnlock()

	result := make([]User, len(list.users))
	for i := range list.users {
		result[i] = *list.users[i]
	}

	return result
}

// Nicks gets the bare nicks in order.
func (list *List) Nicks() []string {
	list.mutex.RLock()
	defer list.mutex.RUnlock()

	result := make([]string, len(list.users))
	for i := range list.users {
		result[i] = list.users[i].Nick
	}

	return result
}

// Len gets the number of users.
func (list *List) Len() int {
	list.mutex.RLock()
	defer list.mutex.RUnlock()

	return len(list.users)
}

// Clear removes all users in a list.
func (list *List) Clear() {
	list.mutex.Lock()

	list.users = list.users[:0]
	for key := range list.index {
		delete(list.index, key)
	}

	list.mutex.Unlock()
}

func (list *List) sort() {
	sort.SliceStable(list.users, func(i, j int) bool {
		a := list.users[i]
		b := list.users[j]

		aRank := rank(a.HighestMode())
		bRank := rank(b.HighestMode())
		if aRank != bRank {
			return aRank < bRank
		}

		return strings.ToLower(a.Nick) < strings.ToLower(b.Nick)
	})
}

func modeOf(prefix rune) rune {
	for _, pm := range prefixModes {
		if pm.prefix == prefix {
			return pm.mode
		}
	}

	return 0
}

// sortModes orders modes by rank, drops unknown ones and returns the matching prefixes.
// IRCv3 multi-prefix promises rank order, but one can never be too sure with IRC.
func sortModes(modes string) (sorted, prefixes string) {
	for _, pm := range prefixModes {
		if strings.ContainsRune(modes, pm.mode) {
			sorted += string(pm.mode)
			prefixes += string(pm.prefix)
		}
	}

	return sorted, prefixes
}

// rank is lower for higher modes. Users without modes come last.
func rank(mode rune) int {
	for i, pm := range prefixModes {
		if pm.mode == mode {
			return i
		}
	}

	return len(prefixModes)
}
