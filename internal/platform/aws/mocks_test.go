package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
)

// apiError is a minimal smithy.APIError for simulating AWS error codes.
type apiError struct {
	code string
}

func (e *apiError) Error() string       { return e.code }
func (e *apiError) ErrorCode() string   { return e.code }
func (e *apiError) ErrorMessage() string { return e.code }
func (e *apiError) ErrorFault() smithy.ErrorFault {
	return smithy.FaultClient
}

type mockSTS struct {
	getCallerIdentity func(ctx context.Context, params *sts.GetCallerIdentityInput) (*sts.GetCallerIdentityOutput, error)
}

func (m *mockSTS) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, _ ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return m.getCallerIdentity(ctx, params)
}

type mockS3 struct {
	headBucket func(ctx context.Context, params *s3.HeadBucketInput) (*s3.HeadBucketOutput, error)
}

func (m *mockS3) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return m.headBucket(ctx, params)
}

type mockEC2 struct {
	describeInstances      func(ctx context.Context, params *ec2.DescribeInstancesInput) (*ec2.DescribeInstancesOutput, error)
	terminateInstances     func(ctx context.Context, params *ec2.TerminateInstancesInput) (*ec2.TerminateInstancesOutput, error)
	describeSecurityGroups func(ctx context.Context, params *ec2.DescribeSecurityGroupsInput) (*ec2.DescribeSecurityGroupsOutput, error)
	deleteSecurityGroup    func(ctx context.Context, params *ec2.DeleteSecurityGroupInput) (*ec2.DeleteSecurityGroupOutput, error)
}

func (m *mockEC2) DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	return m.describeInstances(ctx, params)
}

func (m *mockEC2) TerminateInstances(ctx context.Context, params *ec2.TerminateInstancesInput, _ ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error) {
	return m.terminateInstances(ctx, params)
}

func (m *mockEC2) DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	return m.describeSecurityGroups(ctx, params)
}

func (m *mockEC2) DeleteSecurityGroup(ctx context.Context, params *ec2.DeleteSecurityGroupInput, _ ...func(*ec2.Options)) (*ec2.DeleteSecurityGroupOutput, error) {
	return m.deleteSecurityGroup(ctx, params)
}

type mockELB struct {
	describeLoadBalancers func(ctx context.Context, params *elbv2.DescribeLoadBalancersInput) (*elbv2.DescribeLoadBalancersOutput, error)
	describeTargetGroups  func(ctx context.Context, params *elbv2.DescribeTargetGroupsInput) (*elbv2.DescribeTargetGroupsOutput, error)
	describeTags          func(ctx context.Context, params *elbv2.DescribeTagsInput) (*elbv2.DescribeTagsOutput, error)
	describeListeners     func(ctx context.Context, params *elbv2.DescribeListenersInput) (*elbv2.DescribeListenersOutput, error)
	deleteListener        func(ctx context.Context, params *elbv2.DeleteListenerInput) (*elbv2.DeleteListenerOutput, error)
	deleteLoadBalancer    func(ctx context.Context, params *elbv2.DeleteLoadBalancerInput) (*elbv2.DeleteLoadBalancerOutput, error)
	deleteTargetGroup     func(ctx context.Context, params *elbv2.DeleteTargetGroupInput) (*elbv2.DeleteTargetGroupOutput, error)
}

func (m *mockELB) DescribeLoadBalancers(ctx context.Context, params *elbv2.DescribeLoadBalancersInput, _ ...func(*elbv2.Options)) (*elbv2.DescribeLoadBalancersOutput, error) {
	return m.describeLoadBalancers(ctx, params)
}

func (m *mockELB) DescribeTargetGroups(ctx context.Context, params *elbv2.DescribeTargetGroupsInput, _ ...func(*elbv2.Options)) (*elbv2.DescribeTargetGroupsOutput, error) {
	return m.describeTargetGroups(ctx, params)
}

func (m *mockELB) DescribeTags(ctx context.Context, params *elbv2.DescribeTagsInput, _ ...func(*elbv2.Options)) (*elbv2.DescribeTagsOutput, error) {
	return m.describeTags(ctx, params)
}

func (m *mockELB) DescribeListeners(ctx context.Context, params *elbv2.DescribeListenersInput, _ ...func(*elbv2.Options)) (*elbv2.DescribeListenersOutput, error) {
	return m.describeListeners(ctx, params)
}

func (m *mockELB) DeleteListener(ctx context.Context, params *elbv2.DeleteListenerInput, _ ...func(*elbv2.Options)) (*elbv2.DeleteListenerOutput, error) {
	return m.deleteListener(ctx, params)
}

func (m *mockELB) DeleteLoadBalancer(ctx context.Context, params *elbv2.DeleteLoadBalancerInput, _ ...func(*elbv2.Options)) (*elbv2.DeleteLoadBalancerOutput, error) {
	return m.deleteLoadBalancer(ctx, params)
}

func (m *mockELB) DeleteTargetGroup(ctx context.Context, params *elbv2.DeleteTargetGroupInput, _ ...func(*elbv2.Options)) (*elbv2.DeleteTargetGroupOutput, error) {
	return m.deleteTargetGroup(ctx, params)
}
