package main

import "github.com/funvibe/asc/pkg/cli"

func main() {
	cli.Run()
}
