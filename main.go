package main

import "iviweb/internal/cli"

func main() {
	cli.Execute()
}
