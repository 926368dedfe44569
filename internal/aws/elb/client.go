package elb

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	"github.com/aws/smithy-go"
)

// Target groups front HTTP containers; the group itself always listens on
// plain HTTP port 80, listeners terminate TLS in front of it.
const (
	targetGroupPort     = 80
	targetGroupProtocol = elbtypes.ProtocolEnumHttp
)

type ELBV2API interface {
	DescribeLoadBalancers(ctx context.Context, params *elbv2.DescribeLoadBalancersInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeLoadBalancersOutput, error)
	CreateLoadBalancer(ctx context.Context, params *elbv2.CreateLoadBalancerInput, optFns ...func(*elbv2.Options)) (*elbv2.CreateLoadBalancerOutput, error)
	DeleteLoadBalancer(ctx context.Context, params *elbv2.DeleteLoadBalancerInput, optFns ...func(*elbv2.Options)) (*elbv2.DeleteLoadBalancerOutput, error)
	DescribeTargetGroups(ctx context.Context, params *elbv2.DescribeTargetGroupsInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeTargetGroupsOutput, error)
	CreateTargetGroup(ctx context.Context, params *elbv2.CreateTargetGroupInput, optFns ...func(*elbv2.Options)) (*elbv2.CreateTargetGroupOutput, error)
	DeleteTargetGroup(ctx context.Context, params *elbv2.DeleteTargetGroupInput, optFns ...func(*elbv2.Options)) (*elbv2.DeleteTargetGroupOutput, error)
	DescribeListeners(ctx context.Context, params *elbv2.DescribeListenersInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeListenersOutput, error)
	CreateListener(ctx context.Context, params *elbv2.CreateListenerInput, optFns ...func(*elbv2.Options)) (*elbv2.CreateListenerOutput, error)
	DeleteListener(ctx context.Context, params *elbv2.DeleteListenerInput, optFns ...func(*elbv2.Options)) (*elbv2.DeleteListenerOutput, error)
	ModifyLoadBalancerAttributes(ctx context.Context, params *elbv2.ModifyLoadBalancerAttributesInput, optFns ...func(*elbv2.Options)) (*elbv2.ModifyLoadBalancerAttributesOutput, error)
	ModifyTargetGroupAttributes(ctx context.Context, params *elbv2.ModifyTargetGroupAttributesInput, optFns ...func(*elbv2.Options)) (*elbv2.ModifyTargetGroupAttributesOutput, error)
}

type Client struct {
	api ELBV2API
}

func NewClient(api ELBV2API) *Client {
	return &Client{api: api}
}

// FindLoadBalancer looks up an application load balancer by name.
// A missing load balancer is a normal outcome and returns (nil, nil).
func (c *Client) FindLoadBalancer(ctx context.Context, name string) (*LoadBalancer, error) {
	out, err := c.api.DescribeLoadBalancers(ctx, &elbv2.DescribeLoadBalancersInput{
		Names: []string{name},
	})
	if err != nil {
		var notFound *elbtypes.LoadBalancerNotFoundException
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("DescribeLoadBalancers: %w", err)
	}
	if len(out.LoadBalancers) == 0 {
		return nil, nil
	}

	lb := out.LoadBalancers[0]
	return &LoadBalancer{
		Name:    aws.ToString(lb.LoadBalancerName),
		ARN:     aws.ToString(lb.LoadBalancerArn),
		DNSName: aws.ToString(lb.DNSName),
		VPCID:   aws.ToString(lb.VpcId),
		Scheme:  string(lb.Scheme),
	}, nil
}

// FindTargetGroup looks up a target group by name, (nil, nil) when absent.
func (c *Client) FindTargetGroup(ctx context.Context, name string) (*TargetGroup, error) {
	out, err := c.api.DescribeTargetGroups(ctx, &elbv2.DescribeTargetGroupsInput{
		Names: []string{name},
	})
	if err != nil {
		var notFound *elbtypes.TargetGroupNotFoundException
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("DescribeTargetGroups: %w", err)
	}
	if len(out.TargetGroups) == 0 {
		return nil, nil
	}

	tg := out.TargetGroups[0]
	return &TargetGroup{
		Name:     aws.ToString(tg.TargetGroupName),
		ARN:      aws.ToString(tg.TargetGroupArn),
		Port:     int(aws.ToInt32(tg.Port)),
		Protocol: string(tg.Protocol),
	}, nil
}

func (c *Client) ListListeners(ctx context.Context, lbARN string) ([]Listener, error) {
	var listeners []Listener
	var marker *string

	for {
		out, err := c.api.DescribeListeners(ctx, &elbv2.DescribeListenersInput{
			LoadBalancerArn: aws.String(lbARN),
			Marker:          marker,
		})
		if err != nil {
			return nil, fmt.Errorf("DescribeListeners: %w", err)
		}

		for _, l := range out.Listeners {
			listeners = append(listeners, Listener{
				ARN:      aws.ToString(l.ListenerArn),
				Port:     int(aws.ToInt32(l.Port)),
				Protocol: string(l.Protocol),
			})
		}

		if out.NextMarker == nil {
			break
		}
		marker = out.NextMarker
	}
	return listeners, nil
}

func (c *Client) CreateLoadBalancer(ctx context.Context, params CreateLoadBalancerParams) (*LoadBalancer, error) {
	input := &elbv2.CreateLoadBalancerInput{
		Name:           aws.String(params.Name),
		Subnets:        params.Subnets,
		SecurityGroups: params.SecurityGroups,
		Type:           elbtypes.LoadBalancerTypeEnumApplication,
		Tags:           tagSlice(params.Tags),
	}
	if params.Scheme != "" {
		input.Scheme = elbtypes.LoadBalancerSchemeEnum(params.Scheme)
	}

	out, err := c.api.CreateLoadBalancer(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("CreateLoadBalancer: %w", err)
	}
	if len(out.LoadBalancers) == 0 {
		return nil, fmt.Errorf("CreateLoadBalancer: empty response for %s", params.Name)
	}

	lb := out.LoadBalancers[0]
	return &LoadBalancer{
		Name:    aws.ToString(lb.LoadBalancerName),
		ARN:     aws.ToString(lb.LoadBalancerArn),
		DNSName: aws.ToString(lb.DNSName),
		VPCID:   aws.ToString(lb.VpcId),
		Scheme:  string(lb.Scheme),
	}, nil
}

func (c *Client) DeleteLoadBalancer(ctx context.Context, arn string) error {
	_, err := c.api.DeleteLoadBalancer(ctx, &elbv2.DeleteLoadBalancerInput{
		LoadBalancerArn: aws.String(arn),
	})
	if err != nil {
		return fmt.Errorf("DeleteLoadBalancer: %w", err)
	}
	return nil
}

func (c *Client) CreateTargetGroup(ctx context.Context, params CreateTargetGroupParams) (*TargetGroup, error) {
	input := &elbv2.CreateTargetGroupInput{
		Name:     aws.String(params.Name),
		Port:     aws.Int32(targetGroupPort),
		Protocol: targetGroupProtocol,
		VpcId:    aws.String(params.VPCID),
		Tags:     tagSlice(params.Tags),
	}
	if params.HealthCheckPath != "" {
		input.HealthCheckPath = aws.String(params.HealthCheckPath)
	}
	if params.TargetType != "" {
		input.TargetType = elbtypes.TargetTypeEnum(params.TargetType)
	}

	out, err := c.api.CreateTargetGroup(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("CreateTargetGroup: %w", err)
	}
	if len(out.TargetGroups) == 0 {
		return nil, fmt.Errorf("CreateTargetGroup: empty response for %s", params.Name)
	}

	tg := out.TargetGroups[0]
	return &TargetGroup{
		Name:     aws.ToString(tg.TargetGroupName),
		ARN:      aws.ToString(tg.TargetGroupArn),
		Port:     int(aws.ToInt32(tg.Port)),
		Protocol: string(tg.Protocol),
	}, nil
}

func (c *Client) DeleteTargetGroup(ctx context.Context, arn string) error {
	_, err := c.api.DeleteTargetGroup(ctx, &elbv2.DeleteTargetGroupInput{
		TargetGroupArn: aws.String(arn),
	})
	if err != nil {
		return fmt.Errorf("DeleteTargetGroup: %w", err)
	}
	return nil
}

func (c *Client) CreateListener(ctx context.Context, params CreateListenerParams) (*Listener, error) {
	input := &elbv2.CreateListenerInput{
		LoadBalancerArn: aws.String(params.LoadBalancerARN),
		Port:            aws.Int32(int32(params.Port)),
		Protocol:        elbtypes.ProtocolEnum(params.Protocol),
		DefaultActions: []elbtypes.Action{
			{
				Type:           elbtypes.ActionTypeEnumForward,
				TargetGroupArn: aws.String(params.TargetGroupARN),
			},
		},
	}
	if params.CertificateARN != "" {
		input.Certificates = []elbtypes.Certificate{
			{CertificateArn: aws.String(params.CertificateARN)},
		}
	}

	out, err := c.api.CreateListener(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("CreateListener: %w", err)
	}
	if len(out.Listeners) == 0 {
		return nil, fmt.Errorf("CreateListener: empty response for port %d", params.Port)
	}

	l := out.Listeners[0]
	return &Listener{
		ARN:      aws.ToString(l.ListenerArn),
		Port:     int(aws.ToInt32(l.Port)),
		Protocol: string(l.Protocol),
	}, nil
}

func (c *Client) DeleteListener(ctx context.Context, arn string) error {
	_, err := c.api.DeleteListener(ctx, &elbv2.DeleteListenerInput{
		ListenerArn: aws.String(arn),
	})
	if err != nil {
		return fmt.Errorf("DeleteListener: %w", err)
	}
	return nil
}

func (c *Client) ModifyLoadBalancerAttributes(ctx context.Context, arn string, attrs map[string]string) error {
	attributes := make([]elbtypes.LoadBalancerAttribute, 0, len(attrs))
	for _, key := range sortedKeys(attrs) {
		attributes = append(attributes, elbtypes.LoadBalancerAttribute{
			Key:   aws.String(key),
			Value: aws.String(attrs[key]),
		})
	}

	_, err := c.api.ModifyLoadBalancerAttributes(ctx, &elbv2.ModifyLoadBalancerAttributesInput{
		LoadBalancerArn: aws.String(arn),
		Attributes:      attributes,
	})
	if err != nil {
		return fmt.Errorf("ModifyLoadBalancerAttributes: %w", err)
	}
	return nil
}

func (c *Client) ModifyTargetGroupAttributes(ctx context.Context, arn string, attrs map[string]string) error {
	attributes := make([]elbtypes.TargetGroupAttribute, 0, len(attrs))
	for _, key := range sortedKeys(attrs) {
		attributes = append(attributes, elbtypes.TargetGroupAttribute{
			Key:   aws.String(key),
			Value: aws.String(attrs[key]),
		})
	}

	_, err := c.api.ModifyTargetGroupAttributes(ctx, &elbv2.ModifyTargetGroupAttributesInput{
		TargetGroupArn: aws.String(arn),
		Attributes:     attributes,
	})
	if err != nil {
		return fmt.Errorf("ModifyTargetGroupAttributes: %w", err)
	}
	return nil
}

// IsResourceInUse reports whether err is the transient "resource in use"
// failure returned while a target group still has targets draining out.
func IsResourceInUse(err error) bool {
	var inUse *elbtypes.ResourceInUseException
	if errors.As(err, &inUse) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ResourceInUse"
}

// tagSlice converts a tag map to API tags. Empty maps become nil because
// the API rejects an empty tag array.
func tagSlice(tags map[string]string) []elbtypes.Tag {
	if len(tags) == 0 {
		return nil
	}
	out := make([]elbtypes.Tag, 0, len(tags))
	for _, key := range sortedKeys(tags) {
		out = append(out, elbtypes.Tag{
			Key:   aws.String(key),
			Value: aws.String(tags[key]),
		})
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
