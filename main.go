package main

import "github.com/driveops/testledger/cmd"

func main() {
	cmd.Execute()
}
