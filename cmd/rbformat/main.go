package main

import "rbformat/internal/cli"

func main() {
	cli.Execute()
}
