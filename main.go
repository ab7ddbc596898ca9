package main

import "docnorm/cmd"

func main() {
	cmd.Execute()
}
