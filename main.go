package main

import "github.com/jbcm627/elliptic-solver/cmd"

func main() {
	cmd.Execute()
}
