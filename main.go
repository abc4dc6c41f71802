package main

import "github.com/yeremiapane/restaurant-tables/commands"

func main() {
	commands.Execute()
}
