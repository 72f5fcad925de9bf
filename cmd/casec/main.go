// Command casec compiles case expressions from fixture files and prints the
// emitted stack-machine code.
package main

import "github.com/mth/yeti-sub001/cmd/casec/commands"

func main() {
	commands.Execute()
}
