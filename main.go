// The main package for the shopify-scraper executable.
package main

import (
	"github.com/aidensmith24/shopifyscraper/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
