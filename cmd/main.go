package main

import (
	cmd "github.com/kerbaras/comicmerge/cmd/comicmerge"
)

func main() {
	cmd.Execute()
}
