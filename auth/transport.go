package auth

import "strings"

// ExtractBearer pulls the token out of an Authorization header value.
// A wrong scheme, extra parts or a token that is not three non-empty
// dot-separated segments all mean "no credential", never an error.
func ExtractBearer(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return "", false
	}
	for _, s := range segments {
		if s == "" {
			return "", false
		}
	}
	return token, true
}
