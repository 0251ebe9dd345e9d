package cli_test

import (
	"bytes"
	"testing"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/temirov/ghssh/cmd/cli"
	"github.com/temirov/ghssh/internal/access"
	"github.com/temirov/ghssh/internal/profiles"
)

func loadEmbeddedDefaults(testInstance *testing.T) cli.ApplicationConfiguration {
	testInstance.Helper()
	content, configurationType := cli.EmbeddedDefaultConfiguration()
	require.Equal(testInstance, "yaml", configurationType)

	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationType)
	require.NoError(testInstance, viperInstance.ReadConfig(bytes.NewReader(content)))

	var configuration cli.ApplicationConfiguration
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     &configuration,
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
	})
	require.NoError(testInstance, decoderError)
	require.NoError(testInstance, decoder.Decode(viperInstance.AllSettings()))
	return configuration
}

func TestEmbeddedDefaultsMatchBuiltInDefaults(testInstance *testing.T) {
	configuration := loadEmbeddedDefaults(testInstance)

	require.Equal(testInstance, "warn", configuration.Common.LogLevel)
	require.Equal(testInstance, "console", configuration.Common.LogFormat)
	require.Equal(testInstance, profiles.DefaultConfiguration(), configuration.Profiles)
	require.Equal(testInstance, access.DefaultConfiguration(), configuration.Probe)
	require.Equal(testInstance, time.Duration(0), configuration.Probe.Timeout)
}

func TestEmbeddedDefaultConfigurationReturnsCopy(testInstance *testing.T) {
	firstContent, _ := cli.EmbeddedDefaultConfiguration()
	firstContent[0] = '#'

	secondContent, _ := cli.EmbeddedDefaultConfiguration()
	require.NotEqual(testInstance, firstContent[0], secondContent[0])
}
