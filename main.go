package main

import "github.com/kittrack/kittrack/cmd"

func main() {
	cmd.Execute()
}
