package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrettyTable(t *testing.T) {
	var table PrettyTable
	table.AddRow("TRIPLE", "SYSTEM")
	table.AddRow("x86_64-linux-gnu", "Linux")

	expected := "+------------------+--------+\n" +
		"| TRIPLE           | SYSTEM |\n" +
		"+------------------+--------+\n" +
		"| x86_64-linux-gnu | Linux  |\n" +
		"+------------------+--------+\n"
	assert.Equal(t, expected, table.Render([]int{-1, -1}))
}

func TestPrettyTableWrapsLimitedColumns(t *testing.T) {
	var table PrettyTable
	table.AddRow("a", "0123456789")

	expected := "+---+-------+\n" +
		"| a | 01234 |\n" +
		"|   | 56789 |\n" +
		"+---+-------+\n"
	assert.Equal(t, expected, table.Render([]int{-1, 5}))
}

func TestPrettyTableEmptyCells(t *testing.T) {
	var table PrettyTable
	table.AddRow("a", "")
	table.AddRow("", "")

	out := table.Render([]int{-1, -1})
	assert.Equal(t, "+---+---+\n| a |   |\n+---+---+\n|   |   |\n+---+---+\n", out)
	assert.Equal(t, "", (&PrettyTable{}).Render(nil))
}
