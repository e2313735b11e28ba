package main

import "github.com/jhamir14/restaurant/cmd"

func main() {
	cmd.Start()
}
