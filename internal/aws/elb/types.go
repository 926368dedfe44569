package elb

type LoadBalancer struct {
	Name    string
	ARN     string
	DNSName string
	VPCID   string
	Scheme  string // "internet-facing" / "internal"
}

type TargetGroup struct {
	Name     string
	ARN      string
	Port     int
	Protocol string
}

type Listener struct {
	ARN      string
	Port     int
	Protocol string
}

type CreateLoadBalancerParams struct {
	Name           string
	Subnets        []string
	SecurityGroups []string
	Scheme         string
	Tags           map[string]string
}

type CreateTargetGroupParams struct {
	Name            string
	VPCID           string
	HealthCheckPath string
	TargetType      string // "instance" / "ip" / "lambda"
	Tags            map[string]string
}

type CreateListenerParams struct {
	LoadBalancerARN string
	TargetGroupARN  string
	Protocol        string
	Port            int
	CertificateARN  string
}
