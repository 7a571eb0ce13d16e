// Entrypoint for the chainsim CLI; delegates to the Cobra root command in
// cmd/root.go.
package main

import "github.com/chainsim/chainsim/cmd"

func main() {
	cmd.Execute()
}
