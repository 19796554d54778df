package main

import (
	"github.com/lowsodium/lowsodiumd/internal/cli"
)

func main() {
	cli.Execute()
}
