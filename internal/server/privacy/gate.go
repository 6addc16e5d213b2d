// Package privacy implements the session-scoped visibility gate. The gate is
// independent of decryption: content stays sealed until a record has passed
// it, so locked plaintext can never leak into a response.
package privacy

// Visible reports whether a record with the given effective privacy may be
// shown to a caller whose session is (or is not) privacy-unlocked.
func Visible(effectivelyPrivate, unlocked bool) bool {
	return !effectivelyPrivate || unlocked
}

// Filter returns the records that pass the gate. isPrivate supplies each
// record's resolved effective privacy.
func Filter[T any](records []T, isPrivate func(T) bool, unlocked bool) []T {
	if unlocked {
		return records
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		if !isPrivate(r) {
			out = append(out, r)
		}
	}
	return out
}
