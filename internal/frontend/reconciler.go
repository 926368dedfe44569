// Package frontend reconciles an application's load-balancing front end
// (one application load balancer, one target group, its listeners) against
// the state declared in the app definition.
package frontend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"hako/internal/aws/elb"
	"hako/internal/config"
	"hako/internal/history"
	"hako/internal/retry"
)

const (
	deleteTargetGroupAttempts = 30
	deleteTargetGroupPause    = time.Second
)

// ELBClient is the slice of the control plane the reconciler mutates.
// *elb.Client satisfies it; tests substitute an in-memory fake.
type ELBClient interface {
	FindLoadBalancer(ctx context.Context, name string) (*elb.LoadBalancer, error)
	FindTargetGroup(ctx context.Context, name string) (*elb.TargetGroup, error)
	ListListeners(ctx context.Context, lbARN string) ([]elb.Listener, error)
	CreateLoadBalancer(ctx context.Context, params elb.CreateLoadBalancerParams) (*elb.LoadBalancer, error)
	CreateTargetGroup(ctx context.Context, params elb.CreateTargetGroupParams) (*elb.TargetGroup, error)
	CreateListener(ctx context.Context, params elb.CreateListenerParams) (*elb.Listener, error)
	DeleteLoadBalancer(ctx context.Context, arn string) error
	DeleteTargetGroup(ctx context.Context, arn string) error
	DeleteListener(ctx context.Context, arn string) error
	ModifyLoadBalancerAttributes(ctx context.Context, arn string, attrs map[string]string) error
	ModifyTargetGroupAttributes(ctx context.Context, arn string, attrs map[string]string) error
}

// LoadBalancerParams is what the ECS service registration step needs to
// attach containers to the front end.
type LoadBalancerParams struct {
	TargetGroupARN string
	ContainerName  string
	ContainerPort  int
}

type Options struct {
	AppID   string
	Spec    *config.ELBv2Config // nil means no front end is managed
	DryRun  bool
	Logger  zerolog.Logger
	History history.Recorder
}

// Reconciler drives one app's front end in one region. Operations are
// synchronous and issue sequential control-plane calls; it holds no state
// between calls other than its configuration, so a repeated Converge heals
// whatever a previous partial failure left behind.
type Reconciler struct {
	client  ELBClient
	appID   string
	spec    *config.ELBv2Config
	dryRun  bool
	log     zerolog.Logger
	history history.Recorder

	retryAttempts int
	retryPause    time.Duration
}

func New(client ELBClient, opts Options) *Reconciler {
	rec := opts.History
	if rec == nil {
		rec = history.Nop{}
	}
	return &Reconciler{
		client:        client,
		appID:         opts.AppID,
		spec:          opts.Spec,
		dryRun:        opts.DryRun,
		log:           opts.Logger,
		history:       rec,
		retryAttempts: deleteTargetGroupAttempts,
		retryPause:    deleteTargetGroupPause,
	}
}

// LoadBalancerName is the configured override or the derived default.
func (r *Reconciler) LoadBalancerName() string {
	if r.spec != nil && r.spec.Name != "" {
		return r.spec.Name
	}
	return "hako-" + r.appID
}

// TargetGroupName is always derived from the app id; there is exactly one
// target group per front end.
func (r *Reconciler) TargetGroupName() string {
	return "hako-" + r.appID
}

// FindLoadBalancer resolves the current load balancer, nil when absent.
// Identity is never cached across operations; external mutation between
// steps is possible.
func (r *Reconciler) FindLoadBalancer(ctx context.Context) (*elb.LoadBalancer, error) {
	return r.client.FindLoadBalancer(ctx, r.LoadBalancerName())
}

// FindTargetGroup resolves the current target group, nil when absent.
func (r *Reconciler) FindTargetGroup(ctx context.Context) (*elb.TargetGroup, error) {
	return r.client.FindTargetGroup(ctx, r.TargetGroupName())
}

// Converge creates whatever part of the front end is missing: the load
// balancer, the target group, and one listener per configured port not
// already present. It returns false when no front end is configured.
// There is no rollback on partial failure; a later Converge picks up where
// this one stopped.
func (r *Reconciler) Converge(ctx context.Context) (bool, error) {
	if r.spec == nil {
		return false, nil
	}

	lb, err := r.FindLoadBalancer(ctx)
	if err != nil {
		return false, err
	}
	if lb == nil {
		err := r.execute(ctx, "create", "load_balancer", r.LoadBalancerName(), func(ctx context.Context) error {
			created, err := r.client.CreateLoadBalancer(ctx, elb.CreateLoadBalancerParams{
				Name:           r.LoadBalancerName(),
				Subnets:        r.spec.Subnets,
				SecurityGroups: r.spec.SecurityGroups,
				Scheme:         r.spec.Scheme,
				Tags:           r.spec.Tags,
			})
			if err != nil {
				return err
			}
			lb = created
			r.log.Info().Str("dns_name", created.DNSName).Msgf("created load balancer %s", created.Name)
			return nil
		})
		if err != nil {
			return false, err
		}
	}

	tg, err := r.FindTargetGroup(ctx)
	if err != nil {
		return false, err
	}
	if tg == nil {
		err := r.execute(ctx, "create", "target_group", r.TargetGroupName(), func(ctx context.Context) error {
			created, err := r.client.CreateTargetGroup(ctx, elb.CreateTargetGroupParams{
				Name:            r.TargetGroupName(),
				VPCID:           r.spec.VPCID,
				HealthCheckPath: r.spec.HealthCheckPath,
				TargetType:      r.spec.TargetType,
				Tags:            r.spec.Tags,
			})
			if err != nil {
				return err
			}
			tg = created
			return nil
		})
		if err != nil {
			return false, err
		}
	}

	// Listener identity is the port alone; a protocol change on an
	// existing port is not detected.
	existingPorts := map[int]bool{}
	if lb != nil {
		listeners, err := r.client.ListListeners(ctx, lb.ARN)
		if err != nil {
			return false, err
		}
		for _, l := range listeners {
			existingPorts[l.Port] = true
		}
	}

	for _, spec := range r.spec.Listeners {
		if existingPorts[spec.Port] {
			continue
		}
		detail := fmt.Sprintf("%s:%d", spec.Protocol, spec.Port)
		err := r.execute(ctx, "create", "listener", detail, func(ctx context.Context) error {
			created, err := r.client.CreateListener(ctx, elb.CreateListenerParams{
				LoadBalancerARN: lb.ARN,
				TargetGroupARN:  tg.ARN,
				Protocol:        spec.Protocol,
				Port:            spec.Port,
				CertificateARN:  spec.CertificateARN,
			})
			if err != nil {
				return err
			}
			r.log.Info().Int("port", created.Port).Str("listener_arn", created.ARN).Msg("listener ready")
			return nil
		})
		if err != nil {
			return false, err
		}
	}

	return true, nil
}

// Tune applies the configured attribute overrides to the load balancer and
// the target group. Both resources must already exist in real mode; in
// dry-run the intended call is logged against a placeholder target.
func (r *Reconciler) Tune(ctx context.Context) error {
	if r.spec == nil {
		return nil
	}

	if len(r.spec.LoadBalancerAttributes) > 0 {
		lb, err := r.FindLoadBalancer(ctx)
		if err != nil {
			return err
		}
		arn := "<unknown>"
		if lb != nil {
			arn = lb.ARN
		} else if !r.dryRun {
			return fmt.Errorf("load balancer %s not found, converge before tuning", r.LoadBalancerName())
		}
		err = r.execute(ctx, "modify", "load_balancer", formatAttrs(r.spec.LoadBalancerAttributes), func(ctx context.Context) error {
			return r.client.ModifyLoadBalancerAttributes(ctx, arn, r.spec.LoadBalancerAttributes)
		})
		if err != nil {
			return err
		}
	}

	if len(r.spec.TargetGroupAttributes) > 0 {
		tg, err := r.FindTargetGroup(ctx)
		if err != nil {
			return err
		}
		arn := "<unknown>"
		if tg != nil {
			arn = tg.ARN
		} else if !r.dryRun {
			return fmt.Errorf("target group %s not found, converge before tuning", r.TargetGroupName())
		}
		err = r.execute(ctx, "modify", "target_group", formatAttrs(r.spec.TargetGroupAttributes), func(ctx context.Context) error {
			return r.client.ModifyTargetGroupAttributes(ctx, arn, r.spec.TargetGroupAttributes)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// Retire tears the front end down. Listeners declared in config are pruned
// first; the load balancer goes only once no listener would remain, so a
// front end still carrying foreign listeners is left standing. The target
// group is deleted with a bounded retry while deregistration keeps it in
// use. Returns false when no front end is configured.
func (r *Reconciler) Retire(ctx context.Context) (bool, error) {
	if r.spec == nil {
		return false, nil
	}

	lb, err := r.FindLoadBalancer(ctx)
	if err != nil {
		return false, err
	}
	if lb == nil {
		r.log.Info().Msgf("load balancer %s not found", r.LoadBalancerName())
	} else if err := r.retireLoadBalancer(ctx, lb); err != nil {
		return false, err
	}

	tg, err := r.FindTargetGroup(ctx)
	if err != nil {
		return false, err
	}
	if tg != nil {
		err := r.execute(ctx, "delete", "target_group", tg.Name, func(ctx context.Context) error {
			err := retry.Do(ctx, r.retryAttempts, r.retryPause, elb.IsResourceInUse, func() error {
				return r.client.DeleteTargetGroup(ctx, tg.ARN)
			})
			if errors.Is(err, retry.ErrBudgetExceeded) {
				return fmt.Errorf("deleting target group %s: %w", tg.Name, err)
			}
			return err
		})
		if err != nil {
			return false, err
		}
	}

	return true, nil
}

func (r *Reconciler) retireLoadBalancer(ctx context.Context, lb *elb.LoadBalancer) error {
	listeners, err := r.client.ListListeners(ctx, lb.ARN)
	if err != nil {
		return err
	}

	// Equal counts mean the config fully describes what is attached, so the
	// whole load balancer goes in one call.
	if len(listeners) == len(r.spec.Listeners) {
		return r.deleteLoadBalancer(ctx, lb)
	}

	configuredPorts := map[int]bool{}
	for _, l := range r.spec.Listeners {
		configuredPorts[l.Port] = true
	}

	pruned := map[string]bool{}
	for _, l := range listeners {
		if !configuredPorts[l.Port] {
			continue
		}
		detail := fmt.Sprintf("%s:%d", l.Protocol, l.Port)
		err := r.execute(ctx, "delete", "listener", detail, func(ctx context.Context) error {
			return r.client.DeleteListener(ctx, l.ARN)
		})
		if err != nil {
			return err
		}
		pruned[l.ARN] = true
	}

	refetched, err := r.client.ListListeners(ctx, lb.ARN)
	if err != nil {
		return err
	}
	remaining := 0
	for _, l := range refetched {
		// In dry-run the prune was only simulated, so discount it here.
		if !(r.dryRun && pruned[l.ARN]) {
			remaining++
		}
	}

	if remaining == 0 {
		return r.deleteLoadBalancer(ctx, lb)
	}
	r.log.Info().Int("remaining_listeners", remaining).Msgf("load balancer %s still has listeners, not removed", lb.Name)
	return nil
}

func (r *Reconciler) deleteLoadBalancer(ctx context.Context, lb *elb.LoadBalancer) error {
	return r.execute(ctx, "delete", "load_balancer", lb.Name, func(ctx context.Context) error {
		return r.client.DeleteLoadBalancer(ctx, lb.ARN)
	})
}

// Params resolves the registration triple consumed when the ECS service is
// created or updated against this front end. The target group must exist;
// converge first.
func (r *Reconciler) Params(ctx context.Context) (*LoadBalancerParams, error) {
	if r.spec == nil {
		return nil, fmt.Errorf("app %s has no front end configured", r.appID)
	}
	tg, err := r.FindTargetGroup(ctx)
	if err != nil {
		return nil, err
	}
	if tg == nil {
		return nil, fmt.Errorf("target group %s not found, converge before registering", r.TargetGroupName())
	}
	return &LoadBalancerParams{
		TargetGroupARN: tg.ARN,
		ContainerName:  r.spec.ResolveContainerName(),
		ContainerPort:  r.spec.ResolveContainerPort(),
	}, nil
}

// execute is the single mutation path. Every intended mutation emits one
// log event and one history record; in dry-run mode fn is never invoked.
func (r *Reconciler) execute(ctx context.Context, action, resource, detail string, fn func(context.Context) error) error {
	ev := r.log.Info().
		Str("action", action).
		Str("resource", resource).
		Str("detail", detail)
	if r.dryRun {
		ev.Bool("dry_run", true).Msgf("would %s %s %s", action, resource, detail)
	} else {
		ev.Msgf("%s %s %s", action, resource, detail)
	}

	if err := r.history.Record(history.Event{
		AppID:    r.appID,
		Action:   action,
		Resource: resource,
		Detail:   detail,
		DryRun:   r.dryRun,
	}); err != nil {
		r.log.Warn().Err(err).Msg("failed to record history event")
	}

	if r.dryRun {
		return nil
	}
	return fn(ctx)
}

func formatAttrs(attrs map[string]string) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+attrs[k])
	}
	return strings.Join(pairs, ",")
}
