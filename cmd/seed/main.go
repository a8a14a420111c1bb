package main

import "github.com/xavierca1/ligue-leads/cmd/seed/commands"

func main() {
	commands.Execute()
}
