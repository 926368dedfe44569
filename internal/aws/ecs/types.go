package ecs

type Service struct {
	Name          string
	ARN           string
	Status        string
	DesiredCount  int
	RunningCount  int
	LoadBalancers []LoadBalancerRef
}

type LoadBalancerRef struct {
	TargetGroupARN string
	ContainerName  string
	ContainerPort  int
}
