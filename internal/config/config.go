package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultContainerName = "front"
	DefaultContainerPort = 80
)

// Definition is one application's deploy definition loaded from YAML.
// The elb_v2 block is optional: a definition without it means no
// load-balancing front end is managed for the app.
type Definition struct {
	ID     string       `yaml:"id"`
	Region string       `yaml:"region"`
	ELBv2  *ELBv2Config `yaml:"elb_v2"`
}

// ELBv2Config declares the desired load-balancing front end.
type ELBv2Config struct {
	Name                   string            `yaml:"elb_name"`
	VPCID                  string            `yaml:"vpc_id"`
	Scheme                 string            `yaml:"scheme"`
	Subnets                []string          `yaml:"subnets"`
	SecurityGroups         []string          `yaml:"security_groups"`
	HealthCheckPath        string            `yaml:"health_check_path"`
	TargetType             string            `yaml:"target_type"`
	ContainerName          string            `yaml:"container_name"`
	ContainerPort          int               `yaml:"container_port"`
	Listeners              []Listener        `yaml:"listeners"`
	LoadBalancerAttributes map[string]string `yaml:"load_balancer_attributes"`
	TargetGroupAttributes  map[string]string `yaml:"target_group_attributes"`
	Tags                   map[string]string `yaml:"tags"`
}

// Listener is one protocol/port binding on the load balancer.
type Listener struct {
	Protocol       string `yaml:"protocol"`
	Port           int    `yaml:"port"`
	CertificateARN string `yaml:"certificate_arn"`
}

// Load reads and validates an application definition file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading definition %q: %w", path, err)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing definition %q: %w", path, err)
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid definition %q: %w", path, err)
	}
	return &def, nil
}

// Validate checks the fields the reconciler relies on.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("id is required")
	}
	if d.Region == "" {
		return fmt.Errorf("region is required")
	}
	if d.ELBv2 == nil {
		return nil
	}
	if d.ELBv2.VPCID == "" {
		return fmt.Errorf("elb_v2.vpc_id is required")
	}
	for i, l := range d.ELBv2.Listeners {
		if l.Protocol == "" {
			return fmt.Errorf("elb_v2.listeners[%d].protocol is required", i)
		}
		if l.Port <= 0 {
			return fmt.Errorf("elb_v2.listeners[%d].port is required", i)
		}
	}
	return nil
}

// ResolveContainerName returns the configured container name or "front".
func (c *ELBv2Config) ResolveContainerName() string {
	if c.ContainerName != "" {
		return c.ContainerName
	}
	return DefaultContainerName
}

// ResolveContainerPort returns the configured container port or 80.
func (c *ELBv2Config) ResolveContainerPort() int {
	if c.ContainerPort > 0 {
		return c.ContainerPort
	}
	return DefaultContainerPort
}
