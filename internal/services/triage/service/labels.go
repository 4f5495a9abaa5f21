package service

// ExclusiveRemovals returns the snapshot labels that must go before a new
// category is applied: every configured category plus the fallback.
// Order follows the snapshot; duplicates are dropped
func ExclusiveRemovals(snapshot, categories []string, fallback string) []string {
	cats := make(map[string]struct{}, len(categories)+1)
	for _, c := range categories {
		cats[c] = struct{}{}
	}
	cats[fallback] = struct{}{}

	out := make([]string, 0, len(snapshot))
	seen := make(map[string]struct{}, len(snapshot))
	for _, l := range snapshot {
		if _, ok := cats[l]; !ok {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
