package main

import "github.com/safedrive-ia/safedrive/cmd"

func main() {
	cmd.Execute()
}
