package main

import "github.com/mperativ/agentdir/cmd"

func main() {
	cmd.Execute()
}
