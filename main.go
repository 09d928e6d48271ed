package main

import "docrelay/internal/cli"

func main() {
	cli.Execute()
}
