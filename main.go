package main

import "github.com/mirrorlib/mirrorlib/cmd"

func main() {
	cmd.Execute()
}
