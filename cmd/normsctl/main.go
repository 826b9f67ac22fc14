package main

import "github.com/mind-engage/mindengage-norms/internal/cli"

func main() {
	cli.Execute()
}
