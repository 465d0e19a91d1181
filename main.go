// Package main is the entry point for the sniff CLI.
package main

import "sniff.dev/pkg/sniff/cmd"

func main() {
	cmd.Execute()
}
