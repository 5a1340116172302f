package main

import "github.com/kozaktomas/breed-twin/cmd"

func main() {
	cmd.Execute()
}
