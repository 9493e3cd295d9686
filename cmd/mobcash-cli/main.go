package main

import "github.com/mobcash/mobcash/cmd/mobcash-cli/cmd"

func main() {
	cmd.Execute()
}
