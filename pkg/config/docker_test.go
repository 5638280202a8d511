package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func withDocker(t *testing.T, inDocker bool) {
	t.Helper()
	orig := runningInDocker
	runningInDocker = func() bool { return inDocker }
	t.Cleanup(func() { runningInDocker = orig })
}

func TestResolveHostForDocker(t *testing.T) {
	tests := []struct {
		host     string
		inDocker bool
		want     string
	}{
		{"localhost", true, "host.docker.internal"},
		{"127.0.0.1", true, "host.docker.internal"},
		{"::1", true, "host.docker.internal"},
		{"db2.example.com", true, "db2.example.com"},
		{"localhost", false, "localhost"},
		{"192.168.1.100", false, "192.168.1.100"},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			withDocker(t, tt.inDocker)
			assert.Equal(t, tt.want, ResolveHostForDocker(tt.host))
		})
	}
}

func TestCredentials_DockerRewriteSkipsDB2(t *testing.T) {
	withDocker(t, true)

	db2 := ConnectionConfig{Type: "db2", Host: "localhost"}
	assert.Equal(t, "localhost", db2.Credentials().Host)

	pg := ConnectionConfig{Type: "postgres", Host: "localhost"}
	assert.Equal(t, "host.docker.internal", pg.Credentials().Host)
}
