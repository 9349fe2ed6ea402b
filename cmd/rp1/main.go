package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rp1-run/rp1/cmd/rp1/root"
)

// exitCoder is implemented by errors that carry their own process status.
type exitCoder interface {
	ExitCode() int
}

func main() {
	err := root.Execute(os.Args[1:])
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, strings.Join(strings.Fields(err.Error()), " "))
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	var ec exitCoder
	if errors.As(err, &ec) && ec.ExitCode() != 0 {
		return ec.ExitCode()
	}
	return 1
}
