package main

import (
	"fmt"
	"os"

	"github.com/sandeepkv93/todo/internal/cli"
	"github.com/sandeepkv93/todo/internal/config"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "todo: %v\n", err)
		os.Exit(1)
	}
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "todo: %v\n", err)
		os.Exit(1)
	}
}
