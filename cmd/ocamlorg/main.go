package main

import "github.com/brycenichols/ocaml.org/cmd/ocamlorg/cmd"

func main() {
	cmd.Execute()
}
