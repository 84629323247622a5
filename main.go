package main

import "servicebot/cmd"

func main() {
	cmd.Execute()
}
