package ec2

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
)

type EC2API interface {
	DescribeSubnets(ctx context.Context, params *awsec2.DescribeSubnetsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeSubnetsOutput, error)
	DescribeSecurityGroups(ctx context.Context, params *awsec2.DescribeSecurityGroupsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeSecurityGroupsOutput, error)
}

type Client struct {
	api EC2API
}

func NewClient(api EC2API) *Client {
	return &Client{api: api}
}

// DescribeSubnets resolves subnet ids to display details. The ids come from
// the app definition; they are only ever referenced, never created.
func (c *Client) DescribeSubnets(ctx context.Context, ids []string) ([]Subnet, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	out, err := c.api.DescribeSubnets(ctx, &awsec2.DescribeSubnetsInput{
		SubnetIds: ids,
	})
	if err != nil {
		return nil, fmt.Errorf("DescribeSubnets: %w", err)
	}

	subnets := make([]Subnet, 0, len(out.Subnets))
	for _, s := range out.Subnets {
		name := ""
		for _, tag := range s.Tags {
			if aws.ToString(tag.Key) == "Name" {
				name = aws.ToString(tag.Value)
				break
			}
		}
		subnets = append(subnets, Subnet{
			ID:   aws.ToString(s.SubnetId),
			Name: name,
			CIDR: aws.ToString(s.CidrBlock),
			AZ:   aws.ToString(s.AvailabilityZone),
		})
	}
	return subnets, nil
}

// DescribeSecurityGroups resolves security group ids to display details.
func (c *Client) DescribeSecurityGroups(ctx context.Context, ids []string) ([]SecurityGroup, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	out, err := c.api.DescribeSecurityGroups(ctx, &awsec2.DescribeSecurityGroupsInput{
		GroupIds: ids,
	})
	if err != nil {
		return nil, fmt.Errorf("DescribeSecurityGroups: %w", err)
	}

	groups := make([]SecurityGroup, 0, len(out.SecurityGroups))
	for _, g := range out.SecurityGroups {
		groups = append(groups, SecurityGroup{
			ID:   aws.ToString(g.GroupId),
			Name: aws.ToString(g.GroupName),
		})
	}
	return groups, nil
}
