// Package utils holds small formatting helpers shared by the CLI commands.
package utils

import "strings"

// ShortARN returns the trailing "/" segment of an ARN, which for ELB v2
// listeners is the opaque resource id. Input without a "/" comes back
// unchanged.
func ShortARN(arn string) string {
	if idx := strings.LastIndex(arn, "/"); idx >= 0 {
		return arn[idx+1:]
	}
	return arn
}

// ResourceName returns the human-assigned name segment of an ELB v2 ARN.
// Target group and load balancer ARNs place the name just before the
// trailing id, e.g. ".../targetgroup/hako-nanika/abc123" yields
// "hako-nanika". Input with fewer than two segments comes back unchanged.
func ResourceName(arn string) string {
	parts := strings.Split(arn, "/")
	if len(parts) < 2 {
		return arn
	}
	return parts[len(parts)-2]
}
