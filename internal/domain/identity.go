package domain

import (
	"encoding/json"
	"strconv"
)

// Identity is a stable, opaque user identifier established by token verification.
type Identity string

// IdentityFromUserID builds the identity of a stored user.
func IdentityFromUserID(id int64) Identity {
	return Identity(strconv.FormatInt(id, 10))
}

// UserID returns the numeric user id behind the identity, if it has one.
func (id Identity) UserID() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (id Identity) String() string {
	return string(id)
}

// MarshalJSON emits numeric identities as JSON numbers, which is what
// clients compare against, and anything else as a string.
func (id Identity) MarshalJSON() ([]byte, error) {
	if n, ok := id.UserID(); ok {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(id))
}

func (id *Identity) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*id = Identity(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*id = Identity(s)
	return nil
}
