package ecs

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsecs "github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
)

type ECSAPI interface {
	DescribeServices(ctx context.Context, params *awsecs.DescribeServicesInput, optFns ...func(*awsecs.Options)) (*awsecs.DescribeServicesOutput, error)
}

type Client struct {
	api ECSAPI
}

func NewClient(api ECSAPI) *Client {
	return &Client{api: api}
}

// FindService looks up one service in a cluster, (nil, nil) when the
// cluster has no service by that name.
func (c *Client) FindService(ctx context.Context, cluster, name string) (*Service, error) {
	out, err := c.api.DescribeServices(ctx, &awsecs.DescribeServicesInput{
		Cluster:  aws.String(cluster),
		Services: []string{name},
	})
	if err != nil {
		return nil, fmt.Errorf("DescribeServices: %w", err)
	}
	if len(out.Services) == 0 {
		return nil, nil
	}

	svc := out.Services[0]
	service := &Service{
		Name:         aws.ToString(svc.ServiceName),
		ARN:          aws.ToString(svc.ServiceArn),
		Status:       aws.ToString(svc.Status),
		DesiredCount: int(svc.DesiredCount),
		RunningCount: int(svc.RunningCount),
	}
	for _, lb := range svc.LoadBalancers {
		service.LoadBalancers = append(service.LoadBalancers, LoadBalancerRef{
			TargetGroupARN: aws.ToString(lb.TargetGroupArn),
			ContainerName:  aws.ToString(lb.ContainerName),
			ContainerPort:  int(aws.ToInt32(lb.ContainerPort)),
		})
	}
	return service, nil
}

// RegistrationEntry builds the load balancer entry attached to a service at
// registration time, pointing its container at the front end's target group.
func RegistrationEntry(targetGroupARN, containerName string, containerPort int) ecstypes.LoadBalancer {
	return ecstypes.LoadBalancer{
		TargetGroupArn: aws.String(targetGroupARN),
		ContainerName:  aws.String(containerName),
		ContainerPort:  aws.Int32(int32(containerPort)),
	}
}
