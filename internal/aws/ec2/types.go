package ec2

type Subnet struct {
	ID   string
	Name string
	CIDR string
	AZ   string
}

type SecurityGroup struct {
	ID   string
	Name string
}
