package main

import "github.com/flipcat/catalog-bundler/cmd/catalog-bundler/cmd"

func main() {
	cmd.Execute()
}
