package main

import "plasmaheat/cmd"

func main() {
	cmd.Execute()
}
