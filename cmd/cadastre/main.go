package main

import "github.com/chanot/cadastre/cmd/cadastre/cmd"

func main() {
	cmd.Execute()
}
