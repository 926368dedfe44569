package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"hako/internal/frontend"
	"hako/internal/utils"
)

func NewStatusCmd() *cobra.Command {
	var profile string
	var region string
	var cluster string

	cmd := &cobra.Command{
		Use:   "status <app-definition>",
		Short: "Show the current state of the app's front end",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			def, client, err := loadTarget(ctx, args[0], profile, region)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if account := client.AccountID(ctx); account != "" {
				fmt.Fprintf(out, "account: %s\n", account)
			}
			effRegion := region
			if effRegion == "" {
				effRegion = def.Region
			}
			fmt.Fprintf(out, "app: %s\nregion: %s\n", def.ID, effRegion)

			if def.ELBv2 == nil {
				fmt.Fprintln(out, "no front end configured")
				return nil
			}

			r := frontend.New(client.ELB, frontend.Options{
				AppID:  def.ID,
				Spec:   def.ELBv2,
				Logger: zerolog.Nop(),
			})

			lb, err := r.FindLoadBalancer(ctx)
			if err != nil {
				return err
			}
			if lb == nil {
				fmt.Fprintf(out, "load balancer %s: absent\n", r.LoadBalancerName())
			} else {
				fmt.Fprintf(out, "load balancer %s: %s (%s)\n", lb.Name, lb.DNSName, lb.Scheme)

				listeners, err := client.ELB.ListListeners(ctx, lb.ARN)
				if err != nil {
					return err
				}
				table := tablewriter.NewWriter(out)
				table.SetHeader([]string{"Port", "Protocol", "Listener"})
				for _, l := range listeners {
					table.Append([]string{strconv.Itoa(l.Port), l.Protocol, utils.ShortARN(l.ARN)})
				}
				table.Render()
			}

			tg, err := r.FindTargetGroup(ctx)
			if err != nil {
				return err
			}
			if tg == nil {
				fmt.Fprintf(out, "target group %s: absent\n", r.TargetGroupName())
			} else {
				fmt.Fprintf(out, "target group %s: %s\n", tg.Name, tg.ARN)
			}

			subnets, err := client.EC2.DescribeSubnets(ctx, def.ELBv2.Subnets)
			if err != nil {
				return err
			}
			if len(subnets) > 0 {
				table := tablewriter.NewWriter(out)
				table.SetHeader([]string{"Subnet", "Name", "CIDR", "AZ"})
				for _, s := range subnets {
					table.Append([]string{s.ID, s.Name, s.CIDR, s.AZ})
				}
				table.Render()
			}

			groups, err := client.EC2.DescribeSecurityGroups(ctx, def.ELBv2.SecurityGroups)
			if err != nil {
				return err
			}
			if len(groups) > 0 {
				table := tablewriter.NewWriter(out)
				table.SetHeader([]string{"Security Group", "Name"})
				for _, g := range groups {
					table.Append([]string{g.ID, g.Name})
				}
				table.Render()
			}

			if cluster != "" && tg != nil {
				svc, err := client.ECS.FindService(ctx, cluster, def.ID)
				if err != nil {
					return err
				}
				switch {
				case svc == nil:
					fmt.Fprintf(out, "service %s: absent in cluster %s\n", def.ID, cluster)
				default:
					registered := false
					var others []string
					for _, ref := range svc.LoadBalancers {
						if ref.TargetGroupARN == tg.ARN {
							registered = true
						} else {
							others = append(others, utils.ResourceName(ref.TargetGroupARN))
						}
					}
					fmt.Fprintf(out, "service %s: %s (%d/%d running), front end registered: %t\n",
						svc.Name, svc.Status, svc.RunningCount, svc.DesiredCount, registered)
					if len(others) > 0 {
						fmt.Fprintf(out, "  also registered to: %s\n", strings.Join(others, ", "))
					}
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "AWS profile to use")
	cmd.Flags().StringVarP(&region, "region", "r", "", "AWS region (overrides the definition)")
	cmd.Flags().StringVar(&cluster, "cluster", "", "ECS cluster to check service registration in")

	return cmd
}
