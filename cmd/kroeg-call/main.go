// Command kroeg-call is the operator tool for a kroeg server.
package main

import "github.com/mesh-intelligence/kroeg/internal/cli"

func main() {
	cli.Execute()
}
