package utils

import "strings"

// ToggleMember removes value from list when present and appends it otherwise.
// added reports which of the two happened. The input slice is not modified.
func ToggleMember(list []string, value string) (out []string, added bool) {
	out = make([]string, 0, len(list)+1)
	for _, v := range list {
		if v == value {
			continue
		}
		out = append(out, v)
	}
	if len(out) == len(list) {
		return append(out, value), true
	}
	return out, false
}

func Contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func Remove(list []string, value string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}

// NormalizeTags trims, drops empties and de-duplicates case-insensitively,
// keeping the first spelling seen.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
