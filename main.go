package main

import "github.com/jjenkins/clubs/cmd"

func main() {
	cmd.Execute()
}
