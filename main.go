package main

import "nexttools/cmd"

func main() {
	cmd.Execute()
}
