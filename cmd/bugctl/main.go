package main

import "github.com/spec-kit/bug-tracker/internal/cli"

func main() {
	cli.Execute()
}
