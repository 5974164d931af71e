package main

import (
	"github.com/mediverifyng/mediverify/cmd"
)

func main() {
	cmd.Execute()
}
