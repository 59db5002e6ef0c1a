// Package main provides the atlas CLI.
package main

import "github.com/mesh-intelligence/terrapatch/internal/cli"

func main() {
	cli.Execute()
}
