package main

import (
	"soccer-forecasts/cmd/forecasts-cli/commands"
	"soccer-forecasts/lib/osutil"
)

func main() {
	commands.ExecuteContext(osutil.SignalContext())
}
