package mathrender

import "slices"

// RecentLimit is how many recently inserted symbols are remembered.
const RecentLimit = 10

// PushRecent moves sym to the front of the most-recently-used list,
// dropping duplicates and anything past RecentLimit. The input slice is
// not modified.
func PushRecent(recent []string, sym string) []string {
	out := make([]string, 0, RecentLimit)
	out = append(out, sym)
	for _, s := range recent {
		if s == sym || s == "" {
			continue
		}
		if len(out) == RecentLimit {
			break
		}
		out = append(out, s)
	}
	return slices.Clip(out)
}
