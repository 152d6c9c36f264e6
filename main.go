package main

import (
	"fmt"
)

// main entry point to the environment runner
func main() {
	rootCommand := GetRootCommand()
	if err := rootCommand.Execute(); err != nil {
		fmt.Println(err)
	}
}
