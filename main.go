package main

import "github.com/wayfarerlabs/tripmind/cmd"

func main() {
	cmd.Execute()
}
