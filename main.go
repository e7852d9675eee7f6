package main

import "bansync/cmd"

func main() {
	cmd.Execute()
}
