package enum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type color string

var colors = Set[color]{
	{Key: "RED", Value: "red"},
	{Key: "GREEN", Value: "green"},
}

func TestValuesAndKeys(t *testing.T) {
	assert.Equal(t, []color{"red", "green"}, ValuesOf(colors))
	assert.Equal(t, []string{"RED", "GREEN"}, KeysOf(colors))
	assert.Equal(t, []string{"red", "green"}, Strings(colors))
}

func TestContains(t *testing.T) {
	assert.True(t, Contains(colors, "green"))
	assert.False(t, Contains(colors, "GREEN"))
	assert.False(t, Contains(colors, ""))
}
