package main

import "github.com/nixlim/jarviz/internal/cmd"

func main() {
	cmd.Execute()
}
