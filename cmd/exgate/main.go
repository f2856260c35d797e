package main

import "exgate/cmd/exgate/cmd"

func main() {
	cmd.Execute()
}
