// main is the entry point for the chartwire CLI.
package main

import (
	"github.com/huangsam/chartwire/cmd"
	"github.com/huangsam/chartwire/internal/contract"
	"github.com/huangsam/chartwire/internal/hostdb"
)

func main() {
	defer hostdb.CloseHost()

	if err := cmd.Execute(); err != nil {
		hostdb.CloseHost()
		contract.LogFatal("Command failed", err)
	}
}
