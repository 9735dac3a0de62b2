package utils

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestParseEnvConfigList(t *testing.T) {
	t.Setenv("PREFIX", "a")
	assert.Equal(t, map[int]string{-1: "a"}, ParseEnvConfigList("PREFIX"))

	t.Setenv("PREFIX_0", "b")
	t.Setenv("PREFIX_1", "c")
	t.Setenv("PREFIX_X", "ignored")
	t.Setenv("PREFIX2", "ignored")
	assert.Equal(t, map[int]string{-1: "a", 0: "b", 1: "c"}, ParseEnvConfigList("PREFIX"))
}

func TestSortedEnvConfigList(t *testing.T) {
	t.Setenv("LIST_TEST_2", "c")
	t.Setenv("LIST_TEST_0", "a")
	t.Setenv("LIST_TEST", "x")
	assert.Equal(t, []string{"x", "a", "c"}, SortedEnvConfigList("LIST_TEST"))
	assert.Nil(t, SortedEnvConfigList("LIST_TEST_MISSING"))
}
