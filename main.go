package main

import "github.com/djcass44/pkgstats/cmd"

var version = "development"

func main() {
	cmd.Execute(version)
}
