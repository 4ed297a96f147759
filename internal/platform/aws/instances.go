package aws

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/setheliot/eks-demo/internal/util/naming"
	"github.com/setheliot/eks-demo/internal/util/retry"
)

// NodeTerminator tears down compute nodes that Karpenter launched outside
// Terraform's state. They must be gone before the cluster and its IAM
// bindings are destroyed, or instance termination hangs on missing
// permissions.
type NodeTerminator struct {
	ec2  EC2API
	logf func(format string, args ...any)

	pollInterval time.Duration
	pollTimeout  time.Duration
}

// NewNodeTerminator creates a NodeTerminator over the given clients.
func NewNodeTerminator(clients *Clientset) *NodeTerminator {
	return &NodeTerminator{
		ec2:          clients.EC2,
		logf:         log.Printf,
		pollInterval: 15 * time.Second,
		pollTimeout:  5 * time.Minute,
	}
}

// TerminateClusterNodes terminates all instances carrying the cluster's
// Karpenter discovery tag and waits until they reach the terminated
// state. Returns the number of instances terminated.
func (t *NodeTerminator) TerminateClusterNodes(ctx context.Context, clusterName string) (int, error) {
	ids, err := t.findClusterNodes(ctx, clusterName)
	if err != nil {
		return 0, fmt.Errorf("failed to list Karpenter nodes: %w", err)
	}
	if len(ids) == 0 {
		t.logf("no Karpenter nodes found for cluster %s", clusterName)
		return 0, nil
	}

	t.logf("terminating %d Karpenter node(s): %v", len(ids), ids)
	_, err = t.ec2.TerminateInstances(ctx, &ec2.TerminateInstancesInput{
		InstanceIds: ids,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to terminate instances: %w", err)
	}

	err = retry.PollUntil(ctx, t.pollInterval, t.pollTimeout, func(ctx context.Context) (bool, error) {
		remaining, err := t.findClusterNodes(ctx, clusterName)
		if err != nil {
			return false, err
		}
		return len(remaining) == 0, nil
	})
	if err != nil {
		return len(ids), fmt.Errorf("instances did not reach terminated state: %w", err)
	}

	return len(ids), nil
}

// findClusterNodes lists non-terminated instances tagged for the cluster.
func (t *NodeTerminator) findClusterNodes(ctx context.Context, clusterName string) ([]string, error) {
	var ids []string
	var token *string
	for {
		out, err := t.ec2.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
			Filters: []ec2types.Filter{
				{
					Name:   aws.String("tag:" + naming.TagKarpenterDiscovery),
					Values: []string{clusterName},
				},
				{
					Name:   aws.String("instance-state-name"),
					Values: []string{"pending", "running", "stopping", "stopped", "shutting-down"},
				},
			},
			NextToken: token,
		})
		if err != nil {
			return nil, err
		}

		for _, reservation := range out.Reservations {
			for _, instance := range reservation.Instances {
				ids = append(ids, aws.ToString(instance.InstanceId))
			}
		}

		if out.NextToken == nil {
			return ids, nil
		}
		token = out.NextToken
	}
}
