package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFillsDefaults(t *testing.T) {
	p := &Profile{Data: t.TempDir()}
	require.NoError(t, p.Validate())

	assert.Equal(t, "demo", p.Mode)
	assert.Equal(t, "sqlite", p.Driver)
	assert.Equal(t, "UTC", p.Timezone)
	assert.Contains(t, p.DSN, "greenroom_demo.db")
	assert.True(t, p.IsDev())
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	p := &Profile{Driver: "postgres", Data: t.TempDir()}
	assert.Error(t, p.Validate())
}

func TestFromEnvDoesNotOverrideExplicitValues(t *testing.T) {
	t.Setenv("GREENROOM_MODE", "prod")
	t.Setenv("GREENROOM_TIMEZONE", "Europe/Amsterdam")

	p := &Profile{Mode: "dev"}
	p.FromEnv()

	assert.Equal(t, "dev", p.Mode, "explicit values win over the environment")
	assert.Equal(t, "Europe/Amsterdam", p.Timezone)
}
