package main

import (
	"os"

	"todobin/cmd/todobin/cmd"
)

func main() {
	os.Exit(cmd.Execute(os.Args[1:], os.Stdout, os.Stderr, nil))
}
