package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvBool(t *testing.T) {
	t.Setenv("HDS_FLAG", "")
	assert.True(t, GetEnvBool("HDS_FLAG", true))

	t.Setenv("HDS_FLAG", "false")
	assert.False(t, GetEnvBool("HDS_FLAG", true))

	t.Setenv("HDS_FLAG", "maybe")
	assert.True(t, GetEnvBool("HDS_FLAG", true))
}

func TestGetEnvPositiveInt(t *testing.T) {
	t.Setenv("HDS_INT", "42")
	assert.Equal(t, 42, GetEnvPositiveInt("HDS_INT", 7))

	t.Setenv("HDS_INT", "-1")
	assert.Equal(t, 7, GetEnvPositiveInt("HDS_INT", 7))

	t.Setenv("HDS_INT", "abc")
	assert.Equal(t, 7, GetEnvPositiveInt("HDS_INT", 7))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("HDS_TTL", "90m")
	assert.Equal(t, 90*time.Minute, GetEnvDuration("HDS_TTL", time.Hour))

	t.Setenv("HDS_TTL", "soon")
	assert.Equal(t, time.Hour, GetEnvDuration("HDS_TTL", time.Hour))
}

func TestOTelServiceName_Default(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "")
	assert.Equal(t, "hds-platform", OTelServiceName())
}
