package main

import (
	"os"

	"seo_content_studio/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
