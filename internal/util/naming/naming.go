// Package naming provides consistent naming and tagging conventions for
// the resources the orchestrator touches.
//
// Cluster-scoped infrastructure follows the {prefix}-{environment}-{type}
// pattern laid down by the provisioning templates. Resources created by the
// in-cluster AWS Load Balancer Controller carry the controller's own "k8s-"
// name prefix and are tied back to a cluster through the
// elbv2.k8s.aws/cluster tag, which is the only identity this tool trusts
// when sweeping orphans.
package naming

import "fmt"

// Prefix is the stack prefix shared by all environments.
const Prefix = "eks-demo"

// ControllerPrefix is the name prefix the AWS Load Balancer Controller
// gives to every load balancer and target group it creates.
const ControllerPrefix = "k8s-"

// Tag keys on controller-created AWS resources.
const (
	// TagClusterOwnership maps a controller-created resource to its cluster.
	TagClusterOwnership = "elbv2.k8s.aws/cluster"

	// TagKarpenterDiscovery marks EC2 instances launched by Karpenter for
	// a cluster. These nodes are not tracked in Terraform state.
	TagKarpenterDiscovery = "karpenter.sh/discovery"
)

// ClusterName returns the EKS cluster name for an environment.
func ClusterName(env string) string {
	return fmt.Sprintf("%s-%s-cluster", Prefix, env)
}

// NodeGroupName returns the managed node group name for an environment.
func NodeGroupName(env string) string {
	return fmt.Sprintf("%s-%s-nodes", Prefix, env)
}
