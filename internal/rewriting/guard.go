package rewriting

import (
	"strings"

	"github.com/jonathan/resume-forge/internal/types"
)

// checkInventedEntries returns an error when tailored holds an entry whose organization does
// not appear in an entry of the same kind in original. Titles may be reworded. Entries without
// an organization are matched by title instead.
func checkInventedEntries(original, tailored *types.Resume) error {
	for _, kind := range []string{"education", "experience", "projects", "courses"} {
		known := make(map[string]bool)
		for _, entry := range original.Entries(kind) {
			known[entryKey(entry)] = true
		}
		for _, entry := range tailored.Entries(kind) {
			if !known[entryKey(entry)] {
				return &InventedEntryError{Section: kind, Title: entry.Title, Org: entry.Organization}
			}
		}
	}
	return nil
}

func entryKey(s types.Section) string {
	if org := normalizeKey(s.Organization); org != "" {
		return "org\x00" + org
	}
	return "title\x00" + normalizeKey(s.Title)
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// restoreContact copies the identity and contact fields of original onto tailored.
func restoreContact(original, tailored *types.Resume) {
	tailored.Name = original.Name
	tailored.Email = original.Email
	tailored.Phone = original.Phone
	tailored.Portfolio = original.Portfolio
	tailored.LinkedIn = original.LinkedIn
	tailored.GitHub = original.GitHub
	tailored.Address = original.Address
}
