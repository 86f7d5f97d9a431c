package util

import "os"

var containerMarkers = []string{"/.dockerenv", "/run/.containerenv"}

// IsRunningInDocker reports whether the process runs inside a docker or podman
// container
func IsRunningInDocker() bool {
	if os.Getenv("container") != "" {
		return true
	}

	for _, m := range containerMarkers {
		if _, err := os.Stat(m); err == nil {
			return true
		}
	}

	return false
}
