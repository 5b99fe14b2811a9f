package main

import (
	"os"

	"github.com/jzallen/fred-simulations-sub002/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
