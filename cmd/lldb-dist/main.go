package main

import (
	"github.com/codelldb/lldb-dist/cmd/lldb-dist/commands"
)

func main() {
	commands.Execute()
}
