// Package main provides the opla CLI: it tokenizes, validates and compiles chat prompts
// written with @model, #parameter and /action commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd(viper.GetViper()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
