package main

import "github.com/siddeeqzul/calculatorzakakt/cmd"

func main() {
	cmd.Execute()
}
