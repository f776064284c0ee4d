package main

import "github.com/gameshelf/gameshelf/cmd"

func main() {
	cmd.Execute()
}
