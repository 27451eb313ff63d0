// Package device classifies the runtime environment so hosts can pick
// lighter particle settings on small or mobile screens.
package device

import (
	"regexp"
	"runtime"
)

// ConstrainedWidth is the viewport width, in logical pixels, below which a
// display counts as constrained.
const ConstrainedWidth = 768

var mobileUA = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)

// Constrained reports whether the viewport is narrow or the user agent
// carries a mobile signature.
func Constrained(viewportWidth float64, userAgent string) bool {
	if viewportWidth < ConstrainedWidth {
		return true
	}
	return mobileUA.MatchString(userAgent)
}

// UserAgent builds a user-agent style signature for the native host.
func UserAgent() string {
	return userAgentFor(runtime.GOOS, runtime.GOARCH)
}

func userAgentFor(goos, goarch string) string {
	switch goos {
	case "android":
		return "particlefield (Linux; Android; " + goarch + ")"
	case "ios":
		return "particlefield (iPhone; iOS; " + goarch + ")"
	}
	return "particlefield (" + goos + "; " + goarch + ")"
}
