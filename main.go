package main

import "blib/cmd"

func main() {
	cmd.Execute()
}
