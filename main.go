package main

import "github.com/theirongolddev/omrisk/cmd"

func main() {
	cmd.Execute()
}
