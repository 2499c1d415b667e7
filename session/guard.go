package session

import "net/url"

// Guard decides whether a protected view may render. When it may not, the
// returned redirect points at signInPath and keeps the query parameters of
// the requested URL.
func Guard(state State, target *url.URL, signInPath string) (string, bool) {
	if _, ok := state.(Authenticated); ok {
		return "", true
	}

	redirect := url.URL{Path: signInPath}
	if target != nil {
		redirect.RawQuery = target.RawQuery
	}
	return redirect.String(), false
}
