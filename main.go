package main

import "github.com/orf53975/sslyze/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}
