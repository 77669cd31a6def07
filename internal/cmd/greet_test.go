package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGreetDefaultCount(t *testing.T) {
	out, err := execRoot("greet", "-n", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada!\n", out)
}

func TestGreetRepeats(t *testing.T) {
	out, err := execRoot("greet", "--name", "Grace", "--count", "3")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "Hello Grace!\n"))
}

func TestGreetRequiresName(t *testing.T) {
	_, err := execRoot("greet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}
