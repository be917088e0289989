package main

import (
	"os"

	"gitlab.prplanit.com/precisionplanit/chartferry/src/cli/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
