package main

import "github.com/emiliopalmerini/nexa/internal/cli"

func main() {
	cli.Execute()
}
