package config

import (
	"os"
	"sync"
)

var (
	isDockerOnce   sync.Once
	isDockerResult bool

	// runningInDocker is swapped in tests.
	runningInDocker = IsRunningInDocker
)

// IsRunningInDocker returns true if the process runs inside a Docker container.
// Detection is based on /.dockerenv; the result is cached after the first call.
func IsRunningInDocker() bool {
	isDockerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		isDockerResult = err == nil
	})
	return isDockerResult
}

// ResolveHostForDocker returns "host.docker.internal" for loopback hosts when running
// in Docker so engines listening on the host machine stay reachable.
// Any other host is returned unchanged.
func ResolveHostForDocker(host string) string {
	if !runningInDocker() {
		return host
	}

	switch host {
	case "localhost", "127.0.0.1", "::1":
		return "host.docker.internal"
	}
	return host
}
