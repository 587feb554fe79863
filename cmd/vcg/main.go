package main

import "github.com/ogulcanaydogan/vault-capacity-guardian/internal/cli"

func main() {
	cli.Execute()
}
