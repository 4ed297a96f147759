// Package handlers implements the command logic behind the CLI surface.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/setheliot/eks-demo/internal/config"
	awsplatform "github.com/setheliot/eks-demo/internal/platform/aws"
	"github.com/setheliot/eks-demo/internal/platform/helm"
	"github.com/setheliot/eks-demo/internal/platform/k8s"
	"github.com/setheliot/eks-demo/internal/teardown"
	"github.com/setheliot/eks-demo/internal/terraform"
	"github.com/setheliot/eks-demo/internal/ui"
)

// karpenterNamespace is where the Karpenter Helm release lives.
const karpenterNamespace = "karpenter"

// ErrDeclined means the user did not accept the confirmation prompt.
// Nothing was destroyed, but the command still exits nonzero so scripts
// can distinguish a declined run from a completed one.
var ErrDeclined = errors.New("destroy not confirmed")

// DestroyOptions are the destroy command's flag values.
type DestroyOptions struct {
	EnvFile      string
	Karpenter    bool
	AutoApprove  bool
	TerraformDir string
	Kubeconfig   string
}

// terraformClient is the Terraform surface the handler needs.
type terraformClient interface {
	Init(ctx context.Context) error
	SelectWorkspace(ctx context.Context, name string) error
	Destroy(ctx context.Context, targets ...string) error
}

// Factory function variables for destroy - can be replaced in tests.
var (
	loadEnvironment = config.Load

	newAWSClients = awsplatform.NewClientset

	verifyIdentity = func(ctx context.Context, clients *awsplatform.Clientset) (string, error) {
		return awsplatform.VerifyIdentity(ctx, clients.STS)
	}

	checkStateBucket = func(ctx context.Context, clients *awsplatform.Clientset, bucket string) error {
		return awsplatform.CheckStateBucket(ctx, clients.S3, bucket)
	}

	newTerraform = func(dir string) terraformClient {
		return terraform.NewRunner(dir)
	}

	newClusterClient = func(kubeconfigPath string) (teardown.ClusterUnblocker, error) {
		return k8s.NewClient(kubeconfigPath)
	}

	newReleaseClient = func(namespace string) (teardown.ReleaseUninstaller, error) {
		return helm.NewClient(namespace)
	}

	newOrphanSweeper = func(clients *awsplatform.Clientset) teardown.OrphanSweeper {
		return awsplatform.NewReclaimer(clients)
	}

	newNodeTerminator = func(clients *awsplatform.Clientset) teardown.NodeTerminator {
		return awsplatform.NewNodeTerminator(clients)
	}

	// confirmInput is where the confirmation prompt reads from.
	confirmInput io.Reader = os.Stdin

	// output is where progress is written.
	output io.Writer = os.Stdout
)

// Destroy handles the destroy command.
//
// It resolves the environment, verifies AWS identity, prepares the
// Terraform backend, asks for confirmation, then runs the staged
// teardown. Declining the prompt exits cleanly without touching
// anything.
func Destroy(ctx context.Context, opts DestroyOptions) error {
	rep := ui.NewReporter(output)

	env, err := loadEnvironment(opts.EnvFile)
	if err != nil {
		return err
	}
	if opts.Karpenter {
		env.Karpenter = true
	}

	rep.Infof("environment %s (region %s, cluster %s)", env.Name, env.Region, env.ClusterName())

	clients, err := newAWSClients(ctx, env)
	if err != nil {
		return fmt.Errorf("failed to initialize AWS clients: %w", err)
	}

	account, err := verifyIdentity(ctx, clients)
	if err != nil {
		return err
	}
	rep.Infof("authenticated as account %s", account)

	if env.StateBucket != "" {
		if err := checkStateBucket(ctx, clients, env.StateBucket); err != nil {
			return err
		}
	}

	tf := newTerraform(opts.TerraformDir)
	if err := tf.Init(ctx); err != nil {
		return err
	}
	if err := tf.SelectWorkspace(ctx, env.WorkspaceName()); err != nil {
		return err
	}

	if !opts.AutoApprove {
		prompt := fmt.Sprintf("Destroy environment %q and all of its resources?", env.Name)
		if !ui.Confirm(confirmInput, output, prompt) {
			rep.Infof("aborted, nothing was destroyed")
			return ErrDeclined
		}
	}

	deps := teardown.Deps{
		Terraform: tf,
		Nodes:     newNodeTerminator(clients),
		Orphans:   newOrphanSweeper(clients),
		Infof:     rep.Infof,
	}

	// A cluster that is already gone must not block teardown of what
	// remains, so connectivity failures degrade the cluster-side stages
	// to warnings instead of aborting here.
	if cluster, err := newClusterClient(opts.Kubeconfig); err != nil {
		rep.Warnf("cluster unreachable, skipping in-cluster cleanup: %v", err)
	} else {
		deps.Cluster = cluster
	}

	if env.Karpenter {
		if releases, err := newReleaseClient(karpenterNamespace); err != nil {
			rep.Warnf("helm unavailable, skipping release uninstall: %v", err)
		} else {
			deps.Releases = releases
		}
	}

	stages := teardown.Plan(env, deps)
	if err := teardown.NewRunner(rep).Run(ctx, stages); err != nil {
		return err
	}

	rep.Done("environment %s destroyed", env.Name)
	return nil
}
