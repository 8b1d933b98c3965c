package main

import "docfoundry/cmd"

func main() {
	cmd.Execute()
}
