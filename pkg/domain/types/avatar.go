package types

import (
	"fmt"
	"slices"
)

// AvatarID identifies an icon in the console's fixed avatar set
type AvatarID string

// DefaultAvatarID is assigned when an employee is saved without an avatar
const DefaultAvatarID AvatarID = "avatar1"

// String returns the string representation of the avatar ID
func (a AvatarID) String() string {
	return string(a)
}

// AvatarSet is the list of avatars an employee may pick from
type AvatarSet []AvatarID

// DefaultAvatarSet returns avatar1 .. avatar12
func DefaultAvatarSet() AvatarSet {
	set := make(AvatarSet, 0, 12)
	for i := 1; i <= 12; i++ {
		set = append(set, AvatarID(fmt.Sprintf("avatar%d", i)))
	}
	return set
}

// Contains checks if the avatar is part of the set
func (s AvatarSet) Contains(id AvatarID) bool {
	return slices.Contains(s, id)
}

// Default returns the first avatar of the set, or DefaultAvatarID when the set is empty
func (s AvatarSet) Default() AvatarID {
	if len(s) == 0 {
		return DefaultAvatarID
	}
	return s[0]
}
