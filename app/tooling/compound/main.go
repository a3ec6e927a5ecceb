package main

import "github.com/compoundlabs/compounder/app/tooling/compound/cmd"

func main() {
	cmd.Execute()
}
