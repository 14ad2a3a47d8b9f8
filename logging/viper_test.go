package logging

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSub(t *testing.T) {
	assert := assert.New(t)
	assert.Nil(Sub(nil))

	v := viper.New()
	assert.Nil(Sub(v))

	v.Set(LoggingKey+".file", "stdout")
	assert.NotNil(Sub(v))
}

func TestFromViper(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	o, err := FromViper(nil)
	require.NoError(err)
	assert.Equal(new(Options), o)

	v := viper.New()
	v.SetConfigType("json")
	require.NoError(v.ReadConfig(strings.NewReader(
		`{"log": {"file": "foobar.log", "maxsize": 100, "json": true, "level": "DEBUG"}}`,
	)))

	o, err = FromViper(Sub(v))
	require.NoError(err)
	assert.Equal(
		&Options{
			File:    "foobar.log",
			MaxSize: 100,
			JSON:    true,
			Level:   "DEBUG",
		},
		o,
	)
}
