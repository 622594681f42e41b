// Command societybot runs the housing-society classifieds bot.
//
//	@title			Society Bot API
//	@version		1.0
//	@description	Gateway, webhook and operator API for the housing-society classifieds bot.
//	@BasePath		/api/v1
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
