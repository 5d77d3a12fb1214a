package main

import "citymap-server/cmd"

func main() {
	cmd.Execute()
}
