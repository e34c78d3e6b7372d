// Package match links directory places to tag-store records by textual
// overlap of names and addresses.
package match

import (
	"strings"

	"golang.org/x/text/width"

	"github.com/paymap-jp/paymap-cli/internal/model"
)

// Entry is one tag-store record in the index: its normalized payment
// methods plus the source element's own name and address.
type Entry struct {
	Key     string
	Methods []model.PaymentMethod
}

// Index holds normalized tag-store entries in provider response order.
// Iteration order is insertion order; when several entries textually overlap
// a place, the first one inserted wins.
type Index struct {
	entries []Entry
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{}
}

// Add appends an entry keyed "<kind>_<id>". Entries without methods still
// participate so tag coverage without payment data does not shadow later
// entries; Match skips them.
func (ix *Index) Add(key string, methods []model.PaymentMethod) {
	ix.entries = append(ix.entries, Entry{Key: key, Methods: methods})
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Match links a place to at most one tag-store entry. The comparison is
// case-insensitive, width-folded substring containment in either direction,
// on names first; addresses are consulted only when both sides lack a name.
// Returns the matched methods, the entry key, and whether a match was found.
// No match is not an error: the caller falls back to the default resolver.
func (ix *Index) Match(name, address string) ([]model.PaymentMethod, string, bool) {
	placeName := fold(name)
	placeAddr := fold(address)

	for _, entry := range ix.entries {
		if len(entry.Methods) == 0 {
			continue
		}
		tagName := fold(entry.Methods[0].StoreName)
		tagAddr := fold(entry.Methods[0].StoreAddress)

		if tagName != "" && placeName != "" {
			if overlaps(placeName, tagName) {
				return entry.Methods, entry.Key, true
			}
			continue
		}

		if tagAddr != "" && placeAddr != "" && overlaps(placeAddr, tagAddr) {
			return entry.Methods, entry.Key, true
		}
	}
	return nil, "", false
}

// overlaps reports bidirectional substring containment.
func overlaps(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// separatorStripper drops spaces and hyphen variants, which the two
// providers use inconsistently ("セブン-イレブン" vs "セブンイレブン").
var separatorStripper = strings.NewReplacer(
	" ", "",
	"　", "",
	"-", "",
	"‐", "",
	"–", "",
	"—", "",
	"−", "",
)

// fold lowercases, width-folds, and strips separators so half-width
// katakana, full-width latin, and hyphenation differences compare equal.
func fold(s string) string {
	return separatorStripper.Replace(strings.ToLower(width.Fold.String(s)))
}
