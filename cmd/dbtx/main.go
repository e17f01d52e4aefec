package main

import (
	"log"

	"github.com/dbtx/dbtx/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
