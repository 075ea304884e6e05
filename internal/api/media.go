package api

import "strings"

// ResolveMediaURL normalizes a media reference returned by the backend.
// Absolute references are used verbatim; relative paths are resolved against
// the backend's media origin. An empty reference stays empty so the view
// layer can fall back to its default avatar.
func ResolveMediaURL(origin, ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return strings.TrimRight(origin, "/") + "/" + strings.TrimLeft(ref, "/")
}
