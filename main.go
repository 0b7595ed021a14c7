package main

import "github.com/bnema/compatctl/cmd"

func main() {
	cmd.Execute()
}
