package teardown

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setheliot/eks-demo/internal/config"
	awsplatform "github.com/setheliot/eks-demo/internal/platform/aws"
)

type fakeTerraform struct {
	calls [][]string
	fail  map[string]error
}

func (f *fakeTerraform) Destroy(_ context.Context, targets ...string) error {
	f.calls = append(f.calls, targets)
	if f.fail != nil {
		if err, ok := f.fail[strings.Join(targets, ",")]; ok {
			return err
		}
	}
	return nil
}

type fakeUnblocker struct {
	webhookDeleted string
	stripped       int
	stripErr       error
}

func (f *fakeUnblocker) DeleteValidatingWebhook(_ context.Context, name string) error {
	f.webhookDeleted = name
	return nil
}

func (f *fakeUnblocker) StripIngressFinalizers(context.Context) (int, error) {
	return f.stripped, f.stripErr
}

type fakeNodes struct {
	cluster string
	count   int
	err     error
}

func (f *fakeNodes) TerminateClusterNodes(_ context.Context, clusterName string) (int, error) {
	f.cluster = clusterName
	return f.count, f.err
}

type fakeReleases struct {
	uninstalled []string
}

func (f *fakeReleases) Uninstall(releaseName string) error {
	f.uninstalled = append(f.uninstalled, releaseName)
	return nil
}

type fakeSweeper struct {
	cluster string
	summary awsplatform.Summary
}

func (f *fakeSweeper) Sweep(_ context.Context, clusterName string) awsplatform.Summary {
	f.cluster = clusterName
	return f.summary
}

func testDeps() (Deps, *fakeTerraform, *fakeUnblocker, *fakeSweeper) {
	tf := &fakeTerraform{}
	unblocker := &fakeUnblocker{}
	sweeper := &fakeSweeper{}
	deps := Deps{
		Terraform: tf,
		Cluster:   unblocker,
		Nodes:     &fakeNodes{count: 2},
		Releases:  &fakeReleases{},
		Orphans:   sweeper,
		Infof:     func(string, ...any) {},
	}
	return deps, tf, unblocker, sweeper
}

func stageLabels(stages []Stage) []string {
	labels := make([]string, 0, len(stages))
	for _, s := range stages {
		labels = append(labels, s.Label)
	}
	return labels
}

func TestPlanStageOrder(t *testing.T) {
	t.Parallel()

	env := &config.Environment{Name: "demo1", Region: "us-east-1"}
	deps, _, _, _ := testDeps()

	stages := Plan(env, deps)
	assert.Equal(t, []string{
		"destroy application workload",
		"destroy storage claim",
		"unblock and destroy ingress",
		"destroy remaining infrastructure",
		"reclaim orphaned cloud resources",
	}, stageLabels(stages))

	assert.True(t, stages[0].Critical)
	assert.False(t, stages[1].Critical)
	assert.False(t, stages[2].Critical)
	assert.True(t, stages[3].Critical)
	assert.False(t, stages[4].Critical)
}

func TestPlanKarpenterVariantPrependsStages(t *testing.T) {
	t.Parallel()

	env := &config.Environment{Name: "demo1", Region: "us-east-1", Karpenter: true}
	deps, _, _, _ := testDeps()

	stages := Plan(env, deps)
	require.Len(t, stages, 8)
	assert.Equal(t, []string{
		"terminate Karpenter nodes",
		"uninstall Karpenter release",
		"destroy Karpenter module",
	}, stageLabels(stages)[:3])
	for _, stage := range stages[:3] {
		assert.False(t, stage.Critical, "%s must be best-effort", stage.Label)
	}
}

func TestPlanTerraformTargets(t *testing.T) {
	t.Parallel()

	env := &config.Environment{Name: "demo1", Region: "us-east-1", Karpenter: true}
	deps, tf, _, _ := testDeps()

	for _, stage := range Plan(env, deps) {
		_ = stage.Run(context.Background())
	}

	assert.Equal(t, [][]string{
		{"module.eks_karpenter"},
		{"kubernetes_deployment.demo_app"},
		{"kubernetes_persistent_volume_claim.demo_app_data"},
		{"kubernetes_ingress_v1.demo_app"},
		nil,
	}, tf.calls)
}

func TestPlanIngressStageUnblocksBeforeDestroy(t *testing.T) {
	t.Parallel()

	env := &config.Environment{Name: "demo1", Region: "us-east-1"}
	deps, tf, unblocker, _ := testDeps()
	unblocker.stripped = 1

	stages := Plan(env, deps)
	require.NoError(t, stages[2].Run(context.Background()))

	assert.Equal(t, "aws-load-balancer-webhook", unblocker.webhookDeleted)
	assert.Equal(t, [][]string{{"kubernetes_ingress_v1.demo_app"}}, tf.calls)
}

func TestPlanIngressStageStillDestroysWhenClusterUnreachable(t *testing.T) {
	t.Parallel()

	env := &config.Environment{Name: "demo1", Region: "us-east-1"}
	deps, tf, _, _ := testDeps()
	deps.Cluster = nil

	stages := Plan(env, deps)
	err := stages[2].Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cluster unreachable")
	assert.Equal(t, [][]string{{"kubernetes_ingress_v1.demo_app"}}, tf.calls,
		"targeted destroy still runs so tracked state is cleaned up")
}

func TestPlanKarpenterUninstallWithoutClusterWarns(t *testing.T) {
	t.Parallel()

	env := &config.Environment{Name: "demo1", Region: "us-east-1", Karpenter: true}
	deps, _, _, _ := testDeps()
	deps.Releases = nil

	stages := Plan(env, deps)
	err := stages[1].Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cluster unreachable")
}

func TestPlanOrphanSweepUsesClusterName(t *testing.T) {
	t.Parallel()

	env := &config.Environment{Name: "demo1", Region: "us-east-1"}
	deps, _, _, sweeper := testDeps()
	sweeper.summary = awsplatform.Summary{Results: []awsplatform.SweepResult{
		{Kind: "load balancer", Found: 1, Deleted: 1},
	}}

	stages := Plan(env, deps)
	require.NoError(t, stages[4].Run(context.Background()))
	assert.Equal(t, "eks-demo-demo1-cluster", sweeper.cluster)
}

func TestPlanOrphanSweepReportsFailures(t *testing.T) {
	t.Parallel()

	env := &config.Environment{Name: "demo1", Region: "us-east-1"}
	deps, _, _, sweeper := testDeps()
	sweeper.summary = awsplatform.Summary{Results: []awsplatform.SweepResult{
		{Kind: "security group", Found: 2, Deleted: 1, Failed: 1},
	}}

	stages := Plan(env, deps)
	err := stages[4].Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 orphaned resource(s)")
}

func TestPlanNodeTerminationError(t *testing.T) {
	t.Parallel()

	env := &config.Environment{Name: "demo1", Region: "us-east-1", Karpenter: true}
	deps, _, _, _ := testDeps()
	deps.Nodes = &fakeNodes{err: errors.New("api unavailable")}

	stages := Plan(env, deps)
	err := stages[0].Run(context.Background())
	require.Error(t, err)
}
