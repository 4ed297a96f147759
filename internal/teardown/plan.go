package teardown

import (
	"context"
	"errors"
	"fmt"

	"github.com/setheliot/eks-demo/internal/config"
	awsplatform "github.com/setheliot/eks-demo/internal/platform/aws"
	"github.com/setheliot/eks-demo/internal/platform/k8s"
)

// Terraform state addresses of the application-layer objects destroyed
// individually ahead of the final full pass.
const (
	addrWorkload        = "kubernetes_deployment.demo_app"
	addrStorageClaim    = "kubernetes_persistent_volume_claim.demo_app_data"
	addrIngress         = "kubernetes_ingress_v1.demo_app"
	addrKarpenterModule = "module.eks_karpenter"
)

// karpenterRelease is the Helm release the Karpenter module installs.
const karpenterRelease = "karpenter"

// TerraformRunner destroys tracked resources, targeted or all.
type TerraformRunner interface {
	Destroy(ctx context.Context, targets ...string) error
}

// ClusterUnblocker removes admission hooks and finalizer metadata that
// would block deletions.
type ClusterUnblocker interface {
	DeleteValidatingWebhook(ctx context.Context, name string) error
	StripIngressFinalizers(ctx context.Context) (int, error)
}

// NodeTerminator removes compute nodes not tracked in Terraform state.
type NodeTerminator interface {
	TerminateClusterNodes(ctx context.Context, clusterName string) (int, error)
}

// ReleaseUninstaller removes in-cluster Helm releases.
type ReleaseUninstaller interface {
	Uninstall(releaseName string) error
}

// OrphanSweeper reclaims controller-created cloud resources.
type OrphanSweeper interface {
	Sweep(ctx context.Context, clusterName string) awsplatform.Summary
}

// Deps holds the collaborators the plan's stages close over. Cluster and
// Releases may be nil when the cluster is unreachable; the stages that
// need them degrade to best-effort warnings.
type Deps struct {
	Terraform TerraformRunner
	Cluster   ClusterUnblocker
	Nodes     NodeTerminator
	Releases  ReleaseUninstaller
	Orphans   OrphanSweeper
	Infof     func(format string, args ...any)
}

// Plan assembles the ordered stage list for an environment: the optional
// Karpenter stages first, then workload, storage claim, ingress, the full
// destroy, and finally the orphan sweep.
func Plan(env *config.Environment, deps Deps) []Stage {
	clusterName := env.ClusterName()
	var stages []Stage

	if env.Karpenter {
		stages = append(stages,
			Stage{
				Label: "terminate Karpenter nodes",
				Run: func(ctx context.Context) error {
					count, err := deps.Nodes.TerminateClusterNodes(ctx, clusterName)
					if err != nil {
						return err
					}
					deps.Infof("terminated %d Karpenter node(s)", count)
					return nil
				},
			},
			Stage{
				Label: "uninstall Karpenter release",
				Run: func(ctx context.Context) error {
					if deps.Releases == nil {
						return errors.New("cluster unreachable, skipping release uninstall")
					}
					return deps.Releases.Uninstall(karpenterRelease)
				},
			},
			Stage{
				Label: "destroy Karpenter module",
				Run: func(ctx context.Context) error {
					return deps.Terraform.Destroy(ctx, addrKarpenterModule)
				},
			},
		)
	}

	stages = append(stages,
		Stage{
			Label:    "destroy application workload",
			Critical: true,
			Run: func(ctx context.Context) error {
				return deps.Terraform.Destroy(ctx, addrWorkload)
			},
		},
		Stage{
			Label: "destroy storage claim",
			Run: func(ctx context.Context) error {
				return deps.Terraform.Destroy(ctx, addrStorageClaim)
			},
		},
		Stage{
			Label: "unblock and destroy ingress",
			Run: func(ctx context.Context) error {
				return destroyIngress(ctx, deps)
			},
		},
		Stage{
			Label:    "destroy remaining infrastructure",
			Critical: true,
			Run: func(ctx context.Context) error {
				return deps.Terraform.Destroy(ctx)
			},
		},
		Stage{
			Label: "reclaim orphaned cloud resources",
			Run: func(ctx context.Context) error {
				summary := deps.Orphans.Sweep(ctx, clusterName)
				for _, result := range summary.Results {
					deps.Infof("%s: found %d, deleted %d, failed %d",
						result.Kind, result.Found, result.Deleted, result.Failed)
				}
				if failed := summary.TotalFailed(); failed > 0 {
					return fmt.Errorf("%d orphaned resource(s) could not be deleted", failed)
				}
				return nil
			},
		},
	)

	return stages
}

// destroyIngress clears the admission webhook and finalizers first, so
// the targeted destroy cannot hang on a controller that is already gone.
// All three steps are attempted even when earlier ones fail.
func destroyIngress(ctx context.Context, deps Deps) error {
	var errs []error

	if deps.Cluster != nil {
		if err := deps.Cluster.DeleteValidatingWebhook(ctx, k8s.LoadBalancerWebhookName); err != nil {
			errs = append(errs, err)
		}
		if patched, err := deps.Cluster.StripIngressFinalizers(ctx); err != nil {
			errs = append(errs, err)
		} else if patched > 0 {
			deps.Infof("stripped finalizers from %d ingress(es)", patched)
		}
	} else {
		errs = append(errs, errors.New("cluster unreachable, skipping webhook and finalizer cleanup"))
	}

	if err := deps.Terraform.Destroy(ctx, addrIngress); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
