package main

import "github.com/naka-gawa/contributor-stats/cmd"

func main() {
	cmd.Execute()
}
