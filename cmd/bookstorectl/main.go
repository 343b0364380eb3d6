package main

import "bookstore-api/cmd/bookstorectl/commands"

func main() {
	commands.Execute()
}
