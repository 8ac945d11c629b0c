package main

import (
	cmd "github.com/kerbaras/mangareader/cmd/mangareader"
)

func main() {
	cmd.Execute()
}
