package aws

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/smithy-go"

	"github.com/setheliot/eks-demo/internal/util/naming"
	"github.com/setheliot/eks-demo/internal/util/retry"
)

// describeTagsBatchSize is the DescribeTags API limit on resource ARNs.
const describeTagsBatchSize = 20

// SweepResult is the per-resource-kind outcome of one sweep.
type SweepResult struct {
	Kind    string
	Found   int
	Deleted int
	Failed  int
}

// Summary aggregates the sweep results for one run.
type Summary struct {
	Results []SweepResult
}

// TotalFailed returns the number of resources that could not be deleted.
func (s Summary) TotalFailed() int {
	total := 0
	for _, r := range s.Results {
		total += r.Failed
	}
	return total
}

// TotalDeleted returns the number of resources reclaimed.
func (s Summary) TotalDeleted() int {
	total := 0
	for _, r := range s.Results {
		total += r.Deleted
	}
	return total
}

// Reclaimer sweeps cloud resources that the in-cluster load balancer
// controller should have deleted but may have orphaned. The controller
// creates these directly against the AWS API, so Terraform's destroy
// graph never sees them; if the controller was unhealthy or already gone
// when its Kubernetes objects were deleted, the resources leak and keep
// billing until removed.
//
// Every deletion is best-effort. A resource is only touched when its
// ownership tag names the exact target cluster, so environments sharing
// the controller's "k8s-" name prefix never interfere.
type Reclaimer struct {
	elb  ELBAPI
	ec2  EC2API
	logf func(format string, args ...any)

	// sgRetryDelay spaces out security group deletion attempts while the
	// controller's ENIs detach. Shortened in tests.
	sgRetryDelay time.Duration
}

// NewReclaimer creates a Reclaimer over the given clients.
func NewReclaimer(clients *Clientset) *Reclaimer {
	return &Reclaimer{
		elb:          clients.ELB,
		ec2:          clients.EC2,
		logf:         log.Printf,
		sgRetryDelay: 10 * time.Second,
	}
}

// Sweep enumerates and deletes orphaned load balancers, target groups,
// and security groups belonging to clusterName. Failures are logged and
// counted, never returned: this is the safety net, not the primary
// deletion path.
func (r *Reclaimer) Sweep(ctx context.Context, clusterName string) Summary {
	return Summary{
		Results: []SweepResult{
			r.sweepLoadBalancers(ctx, clusterName),
			r.sweepTargetGroups(ctx, clusterName),
			r.sweepSecurityGroups(ctx, clusterName),
		},
	}
}

func (r *Reclaimer) sweepLoadBalancers(ctx context.Context, clusterName string) SweepResult {
	result := SweepResult{Kind: "load-balancer"}

	var candidates []string // ARNs with the controller name prefix
	var marker *string
	for {
		out, err := r.elb.DescribeLoadBalancers(ctx, &elbv2.DescribeLoadBalancersInput{Marker: marker})
		if err != nil {
			r.logf("orphan sweep: failed to list load balancers: %v", err)
			return result
		}
		for _, lb := range out.LoadBalancers {
			if strings.HasPrefix(aws.ToString(lb.LoadBalancerName), naming.ControllerPrefix) {
				candidates = append(candidates, aws.ToString(lb.LoadBalancerArn))
			}
		}
		if out.NextMarker == nil {
			break
		}
		marker = out.NextMarker
	}

	owned, err := r.filterByClusterTag(ctx, candidates, clusterName)
	if err != nil {
		r.logf("orphan sweep: failed to read load balancer tags: %v", err)
		return result
	}
	result.Found = len(owned)

	for _, arn := range owned {
		if err := r.deleteLoadBalancer(ctx, arn); err != nil {
			r.logf("orphan sweep: failed to delete load balancer %s: %v", arn, err)
			result.Failed++
			continue
		}
		r.logf("orphan sweep: deleted load balancer %s", arn)
		result.Deleted++
	}
	return result
}

// deleteLoadBalancer removes the listeners first; the API rejects load
// balancer deletion while listeners reference its target groups.
func (r *Reclaimer) deleteLoadBalancer(ctx context.Context, arn string) error {
	listeners, err := r.elb.DescribeListeners(ctx, &elbv2.DescribeListenersInput{
		LoadBalancerArn: aws.String(arn),
	})
	if err != nil && !isNotFound(err) {
		return err
	}
	if listeners != nil {
		for _, listener := range listeners.Listeners {
			_, err := r.elb.DeleteListener(ctx, &elbv2.DeleteListenerInput{
				ListenerArn: listener.ListenerArn,
			})
			if err != nil && !isNotFound(err) {
				return err
			}
		}
	}

	_, err = r.elb.DeleteLoadBalancer(ctx, &elbv2.DeleteLoadBalancerInput{
		LoadBalancerArn: aws.String(arn),
	})
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

func (r *Reclaimer) sweepTargetGroups(ctx context.Context, clusterName string) SweepResult {
	result := SweepResult{Kind: "target-group"}

	var candidates []string
	var marker *string
	for {
		out, err := r.elb.DescribeTargetGroups(ctx, &elbv2.DescribeTargetGroupsInput{Marker: marker})
		if err != nil {
			r.logf("orphan sweep: failed to list target groups: %v", err)
			return result
		}
		for _, tg := range out.TargetGroups {
			if strings.HasPrefix(aws.ToString(tg.TargetGroupName), naming.ControllerPrefix) {
				candidates = append(candidates, aws.ToString(tg.TargetGroupArn))
			}
		}
		if out.NextMarker == nil {
			break
		}
		marker = out.NextMarker
	}

	owned, err := r.filterByClusterTag(ctx, candidates, clusterName)
	if err != nil {
		r.logf("orphan sweep: failed to read target group tags: %v", err)
		return result
	}
	result.Found = len(owned)

	for _, arn := range owned {
		_, err := r.elb.DeleteTargetGroup(ctx, &elbv2.DeleteTargetGroupInput{
			TargetGroupArn: aws.String(arn),
		})
		if err != nil && !isNotFound(err) {
			r.logf("orphan sweep: failed to delete target group %s: %v", arn, err)
			result.Failed++
			continue
		}
		r.logf("orphan sweep: deleted target group %s", arn)
		result.Deleted++
	}
	return result
}

func (r *Reclaimer) sweepSecurityGroups(ctx context.Context, clusterName string) SweepResult {
	result := SweepResult{Kind: "security-group"}

	out, err := r.ec2.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: []ec2types.Filter{
			{
				Name:   aws.String("tag:" + naming.TagClusterOwnership),
				Values: []string{clusterName},
			},
		},
	})
	if err != nil {
		r.logf("orphan sweep: failed to list security groups: %v", err)
		return result
	}

	for _, sg := range out.SecurityGroups {
		if aws.ToString(sg.GroupName) == "default" {
			continue
		}
		result.Found++

		groupID := aws.ToString(sg.GroupId)
		// ENIs created by the controller detach asynchronously; retry the
		// dependency violations for a bounded window.
		err := retry.WithExponentialBackoff(ctx, func() error {
			_, err := r.ec2.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{
				GroupId: aws.String(groupID),
			})
			if err == nil || isNotFound(err) {
				return nil
			}
			if isDependencyViolation(err) {
				return err
			}
			return retry.Fatal(err)
		}, retry.WithMaxRetries(3), retry.WithInitialDelay(r.sgRetryDelay))

		if err != nil {
			r.logf("orphan sweep: failed to delete security group %s: %v", groupID, err)
			result.Failed++
			continue
		}
		r.logf("orphan sweep: deleted security group %s", groupID)
		result.Deleted++
	}
	return result
}

// filterByClusterTag keeps only the ARNs whose ownership tag names the
// target cluster exactly. This is the isolation boundary between
// environments sharing the controller's naming prefix.
func (r *Reclaimer) filterByClusterTag(ctx context.Context, arns []string, clusterName string) ([]string, error) {
	var owned []string
	for start := 0; start < len(arns); start += describeTagsBatchSize {
		end := min(start+describeTagsBatchSize, len(arns))

		out, err := r.elb.DescribeTags(ctx, &elbv2.DescribeTagsInput{
			ResourceArns: arns[start:end],
		})
		if err != nil {
			return nil, err
		}

		for _, desc := range out.TagDescriptions {
			for _, tag := range desc.Tags {
				if aws.ToString(tag.Key) == naming.TagClusterOwnership && aws.ToString(tag.Value) == clusterName {
					owned = append(owned, aws.ToString(desc.ResourceArn))
					break
				}
			}
		}
	}
	return owned, nil
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return strings.Contains(apiErr.ErrorCode(), "NotFound")
}

func isDependencyViolation(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorCode() == "DependencyViolation"
}
