// Package gate is the admin boundary check in front of catalog and
// ledger mutations.
package gate

// CheckPassword reports whether the candidate matches the expected
// password. Plain equality; hashing and lockout belong to the hosting
// presentation layer.
func CheckPassword(candidate, expected string) bool {
	return candidate == expected
}
