package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stderr).Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
