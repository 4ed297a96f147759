// Package main is the entry point for the eksdemo CLI.
//
// eksdemo tears down EKS demo environments: the Terraform-managed
// infrastructure, the in-cluster objects that would otherwise block it,
// and the load-balancer-controller resources Terraform never tracked.
//
// For detailed usage information, run:
//
//	eksdemo --help
package main

import (
	"fmt"
	"os"

	"github.com/setheliot/eks-demo/cmd/eksdemo/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
