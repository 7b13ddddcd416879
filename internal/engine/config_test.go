package engine

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigUsesHardcodedPorts(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultHTTPAddr, cfg.HTTPAddr)
	assert.Equal(t, DefaultGRPCAddr, cfg.GRPCAddr)
}

func TestDefaultConfigHonorsStaticDirEnv(t *testing.T) {
	t.Setenv("STATIC_DIR", "/tmp/ui")
	cfg := DefaultConfig()
	assert.Equal(t, "/tmp/ui", cfg.StaticDir)
}

func TestDefaultConfigFallsBackToDistWhenUnset(t *testing.T) {
	os.Unsetenv("STATIC_DIR")
	cfg := DefaultConfig()
	assert.Equal(t, defaultStaticDir, cfg.StaticDir)
}
