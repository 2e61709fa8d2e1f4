package session

import (
	"github.com/BurntSushi/toml"
)

// Identity is the locally cached identity of the signed-in user. A missing
// or unreadable identity file yields the guest identity; per-user persisted
// collections are then keyed under "guest".
type Identity struct {
	UserID string `toml:"user_id"`
	Role   string `toml:"role"` // driver or commuter
}

// Guest is the identity used when nobody is signed in.
var Guest = Identity{UserID: "", Role: "commuter"}

// LoadIdentity reads the identity file for a profile. Absence is not an
// error: the guest identity is returned instead.
func LoadIdentity(profile string) Identity {
	var id Identity
	if _, err := toml.DecodeFile(IdentityPath(profile), &id); err != nil {
		return Guest
	}
	return id
}

// SaveIdentity persists the identity file for a profile.
func SaveIdentity(profile string, id Identity) error {
	if err := EnsureDir(profile); err != nil {
		return err
	}
	f, err := createPrivate(IdentityPath(profile))
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(id)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// StoreKey returns the key under which per-user collections are persisted.
func (id Identity) StoreKey() string {
	if id.UserID == "" {
		return "guest"
	}
	return id.UserID
}
