// jwt-contract-validator validates recorded JWT traffic against an OpenAPI contract.
//
// Usage:
//
//	jwt-contract-validator validate [--contract URL] [--logs DIR] [--output FILE] [--format csv|json]
//	jwt-contract-validator serve [--contract URL] [--port N]
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
