package main

import "github.com/fuzalab/fuza/internal/cli"

func main() {
	cli.Execute()
}
