package commands

import (
	"github.com/spf13/cobra"

	"github.com/setheliot/eks-demo/cmd/eksdemo/handlers"
)

// Destroy returns the destroy command.
//
// The destroy command tears down one demo environment in dependency
// order: application workload, storage claim, ingress, then the full
// infrastructure, finishing with a sweep for load-balancer-controller
// resources Terraform never tracked.
func Destroy() *cobra.Command {
	var opts handlers.DestroyOptions

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Destroy an EKS demo environment and all associated resources",
		Long: `Destroy tears down all resources of one demo environment.

Resources are removed in dependency order:
  - Application workload (Deployment)
  - Storage claim (PersistentVolumeClaim)
  - Ingress, after removing the admission webhook and finalizers
  - Remaining infrastructure (EKS cluster, VPC, node groups)
  - Orphaned load balancers, target groups, and security groups the
    AWS Load Balancer Controller created outside of Terraform state

With --karpenter, Karpenter-provisioned nodes are terminated and the
karpenter Helm release is uninstalled before its module is destroyed.

Example:
  eksdemo destroy -e environment/demo1.env

WARNING: This operation is irreversible. All environment data will be lost.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Destroy(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.EnvFile, "env-file", "e", "", "Path to environment configuration file (required)")
	cmd.Flags().BoolVar(&opts.Karpenter, "karpenter", false, "Also tear down Karpenter nodes, release, and module")
	cmd.Flags().BoolVar(&opts.AutoApprove, "auto-approve", false, "Skip the interactive confirmation prompt")
	cmd.Flags().StringVar(&opts.TerraformDir, "terraform-dir", "terraform", "Directory containing the Terraform configuration")
	cmd.Flags().StringVar(&opts.Kubeconfig, "kubeconfig", "", "Path to kubeconfig (defaults to KUBECONFIG or ~/.kube/config)")
	_ = cmd.MarkFlagRequired("env-file")

	return cmd
}
