package entity

import "golang.org/x/text/cases"

// UserKey is the case-folded form of a user handle. Two handles name the same
// user exactly when their keys are equal.
func UserKey(user string) string {
	// a Caser keeps state between calls, so every call gets its own
	return cases.Fold().String(user)
}

func SameUser(a, b string) bool {
	return UserKey(a) == UserKey(b)
}
