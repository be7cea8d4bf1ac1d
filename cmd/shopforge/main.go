package main

import "github.com/entrepeneur4lyf/shopforge/cmd/shopforge/cmd"

func main() {
	cmd.Execute()
}
