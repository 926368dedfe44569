package ec2

import (
	"context"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEC2API struct {
	describeSubnetsFunc        func(ctx context.Context, params *awsec2.DescribeSubnetsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeSubnetsOutput, error)
	describeSecurityGroupsFunc func(ctx context.Context, params *awsec2.DescribeSecurityGroupsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeSecurityGroupsOutput, error)
}

func (m *mockEC2API) DescribeSubnets(ctx context.Context, params *awsec2.DescribeSubnetsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeSubnetsOutput, error) {
	return m.describeSubnetsFunc(ctx, params, optFns...)
}
func (m *mockEC2API) DescribeSecurityGroups(ctx context.Context, params *awsec2.DescribeSecurityGroupsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeSecurityGroupsOutput, error) {
	return m.describeSecurityGroupsFunc(ctx, params, optFns...)
}

func TestDescribeSubnets(t *testing.T) {
	mock := &mockEC2API{
		describeSubnetsFunc: func(ctx context.Context, params *awsec2.DescribeSubnetsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeSubnetsOutput, error) {
			assert.Equal(t, []string{"subnet-a"}, params.SubnetIds)
			return &awsec2.DescribeSubnetsOutput{
				Subnets: []ec2types.Subnet{
					{
						SubnetId:         awssdk.String("subnet-a"),
						CidrBlock:        awssdk.String("10.0.1.0/24"),
						AvailabilityZone: awssdk.String("ap-northeast-1a"),
						Tags: []ec2types.Tag{
							{Key: awssdk.String("Name"), Value: awssdk.String("private-a")},
						},
					},
				},
			}, nil
		},
	}

	subnets, err := NewClient(mock).DescribeSubnets(context.Background(), []string{"subnet-a"})
	require.NoError(t, err)
	require.Len(t, subnets, 1)
	assert.Equal(t, "private-a", subnets[0].Name)
	assert.Equal(t, "10.0.1.0/24", subnets[0].CIDR)
	assert.Equal(t, "ap-northeast-1a", subnets[0].AZ)
}

func TestDescribeSubnets_EmptyInput(t *testing.T) {
	called := false
	mock := &mockEC2API{
		describeSubnetsFunc: func(ctx context.Context, params *awsec2.DescribeSubnetsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeSubnetsOutput, error) {
			called = true
			return &awsec2.DescribeSubnetsOutput{}, nil
		},
	}

	subnets, err := NewClient(mock).DescribeSubnets(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, subnets)
	assert.False(t, called)
}

func TestDescribeSecurityGroups(t *testing.T) {
	mock := &mockEC2API{
		describeSecurityGroupsFunc: func(ctx context.Context, params *awsec2.DescribeSecurityGroupsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeSecurityGroupsOutput, error) {
			return &awsec2.DescribeSecurityGroupsOutput{
				SecurityGroups: []ec2types.SecurityGroup{
					{GroupId: awssdk.String("sg-1"), GroupName: awssdk.String("elb-front")},
				},
			}, nil
		},
	}

	groups, err := NewClient(mock).DescribeSecurityGroups(context.Background(), []string{"sg-1"})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "elb-front", groups[0].Name)
}
