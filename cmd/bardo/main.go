package main

import "bardo/cmd/bardo/commands"

func main() {
	commands.Execute()
}
