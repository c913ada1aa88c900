package main

import (
	"fmt"
	"os"
)

func run() error {
	return nil
}

func fail() {
	os.Exit(2)
}

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1) // want `os.Exit call is forbidden in main function: os.Exit\(1\)`
	}

	defer func() {
		os.Exit(0)
	}()

	fail()
}
