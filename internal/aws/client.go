package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsec2sdk "github.com/aws/aws-sdk-go-v2/service/ec2"
	awsecssdk "github.com/aws/aws-sdk-go-v2/service/ecs"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"

	awsec2 "hako/internal/aws/ec2"
	awsecs "hako/internal/aws/ecs"
	awselb "hako/internal/aws/elb"
)

// ServiceClient bundles the per-service clients the deploy commands use.
type ServiceClient struct {
	ELB *awselb.Client
	EC2 *awsec2.Client
	ECS *awsecs.Client

	cfg awssdk.Config
}

func NewServiceClient(ctx context.Context, profile, region string) (*ServiceClient, error) {
	cfg, err := LoadConfig(ctx, profile, region)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &ServiceClient{
		ELB: awselb.NewClient(elbv2.NewFromConfig(cfg)),
		EC2: awsec2.NewClient(awsec2sdk.NewFromConfig(cfg)),
		ECS: awsecs.NewClient(awsecssdk.NewFromConfig(cfg)),
		cfg: cfg,
	}, nil
}
