package fetch

import "strings"

// NormalizeSourceURL turns a gist page URL into its raw form. URLs that
// already point at raw content are returned unchanged.
func NormalizeSourceURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.Contains(ref, "/raw") {
		return ref
	}
	if strings.Contains(ref, "gist.github.com") {
		return strings.Replace(ref, "gist.github.com", "gist.githubusercontent.com", 1) + "/raw"
	}
	return ref
}
