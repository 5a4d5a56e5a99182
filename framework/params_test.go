package framework

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadParamsDefaults(t *testing.T) {
	var p Params
	var errOut bytes.Buffer
	require.True(t, p.Read([]string{"./traits"}, &errOut))

	assert.Len(t, p.TraitNames, 0)
	assert.Equal(t, DefaultCaptureCapacity, p.CaptureCapacity)
	assert.False(t, p.Filters.IsDefined())
	assert.False(t, p.Debug || p.DebugAll || p.NoColor || p.List)
	assert.Equal(t, []string{"./traits"}, p.command)
	assert.Equal(t, "", errOut.String())
}

func TestReadParamsFlagsAndTraits(t *testing.T) {
	var p Params
	var errOut bytes.Buffer
	require.True(t, p.Read([]string{"./traits",
		"-run", "^fire/", "-skip", "slow", "-capture", "128",
		"-debug", "-no-color",
		"fire", "maybe text",
	}, &errOut))

	assert.Equal(t, []string{"fire", "maybe text"}, p.TraitNames)
	assert.Equal(t, 128, p.CaptureCapacity)
	assert.True(t, p.Debug)
	assert.True(t, p.NoColor)
	assert.True(t, p.Filters.AsFilter(NewFeatureID("fire", "quick")))
	assert.False(t, p.Filters.AsFilter(NewFeatureID("fire", "slow")))

	assert.Equal(t, []string{"./traits",
		"-run", "^fire/", "-skip", "slow", "-capture", "128",
		"-debug", "-no-color",
	}, p.command)
	assert.Equal(t, "./traits -run '^fire/' -skip slow -capture 128 -debug -no-color fire",
		rerunCommand(p.command, "fire"))
}

func TestReadParamsErrors(t *testing.T) {
	for _, args := range [][]string{
		{"./traits", "-capture", "0"},
		{"./traits", "-capture", "lots"},
		{"./traits", "-run", "("},
		{"./traits", "-bogus"},
	} {
		var p Params
		var errOut bytes.Buffer
		assert.False(t, p.Read(args, &errOut), "args: %v", args)
		assert.Contains(t, errOut.String(), "Usage: ./traits [flags] [trait ...]", "args: %v", args)
	}
}
