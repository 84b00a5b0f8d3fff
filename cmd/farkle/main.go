package main

import "github.com/mcoot/farkle-go/internal/cli"

func main() {
	cli.Execute()
}
