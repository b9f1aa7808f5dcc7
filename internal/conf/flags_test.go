package conf

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMappedFlagOverridesConfig(t *testing.T) {
	resetViper(t)
	path := writeConfig(t, `
api:
  baseurl: http://from-file:8000
webserver:
  port: "9090"
`)

	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags.String("api", "", "")
	flags.String("port", "", "")
	require.NoError(t, MapFlag(flags, "api", "api.baseurl"))
	require.NoError(t, MapFlag(flags, "port", "webserver.port"))
	require.NoError(t, flags.Parse([]string{"--api", "http://from-flag:8000"}))

	require.NoError(t, BindFlags(flags))
	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://from-flag:8000", settings.API.BaseURL)
	assert.Equal(t, "9090", settings.WebServer.Port, "unset flags leave the config value")
}

func TestMapUnknownFlag(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	assert.Error(t, MapFlag(flags, "missing", "api.baseurl"))
}
