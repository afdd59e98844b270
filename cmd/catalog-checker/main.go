package main

import "github.com/flipcat/catalog-bundler/cmd/catalog-checker/cmd"

func main() {
	cmd.Execute()
}
