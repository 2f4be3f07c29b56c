// Command odatasearch translates OData $filter and $orderby expressions,
// manages stored content schemas and serves a search endpoint.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
