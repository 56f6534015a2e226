package bootstrap

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"ChordDHT/internal/config"
	"ChordDHT/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
)

// Route53Bootstrap discovers and publishes peers as SRV records in a Route
// 53 hosted zone (spec.md §6 bootstrap mode "dns").
type Route53Bootstrap struct {
	client       *route53.Client
	hostedZoneID string
	domainSuffix string
	ttl          int64
}

func NewRoute53Bootstrap(cfg config.RegisterConfig) (*Route53Bootstrap, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := newRoute53Client(ctx)
	if err != nil {
		return nil, err
	}
	return &Route53Bootstrap{
		client:       client,
		hostedZoneID: cfg.HostedZoneID,
		domainSuffix: strings.TrimSuffix(cfg.DomainSuffix, "."),
		ttl:          cfg.TTL,
	}, nil
}

func newRoute53Client(ctx context.Context) (*route53.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return route53.NewFromConfig(awsCfg), nil
}

// Discover lists every SRV record under domainSuffix in the hosted zone
// and resolves each record's target host to the addresses it advertises.
func (r *Route53Bootstrap) Discover(ctx context.Context) ([]string, error) {
	var endpoints []string
	input := &route53.ListResourceRecordSetsInput{HostedZoneId: aws.String(r.hostedZoneID)}
	paginator := route53.NewListResourceRecordSetsPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: list records: %w", err)
		}
		for _, rrset := range page.ResourceRecordSets {
			if rrset.Type != types.RRTypeSrv {
				continue
			}
			if !strings.HasSuffix(strings.TrimSuffix(*rrset.Name, "."), r.domainSuffix) {
				continue
			}
			for _, rr := range rrset.ResourceRecords {
				var prio, weight, port int
				var target string
				if _, err := fmt.Sscanf(*rr.Value, "%d %d %d %s", &prio, &weight, &port, &target); err != nil {
					continue
				}
				target = strings.TrimSuffix(target, ".")
				ips, err := net.LookupHost(target)
				if err != nil {
					continue
				}
				for _, ip := range ips {
					endpoints = append(endpoints, fmt.Sprintf("%s:%d", ip, port))
				}
			}
		}
	}
	return endpoints, nil
}

// Register upserts node's SRV record, keyed by its hex identifier so
// repeated joins under the same identity converge on one record.
func (r *Route53Bootstrap) Register(ctx context.Context, node *domain.Node) error {
	recordName := fmt.Sprintf("%s.%s.", node.ID.Hex(), r.domainSuffix)
	host, port, err := net.SplitHostPort(node.Addr)
	if err != nil {
		return fmt.Errorf("bootstrap: splitting address %s: %w", node.Addr, err)
	}
	_, err = r.client.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(r.hostedZoneID),
		ChangeBatch: &types.ChangeBatch{
			Changes: []types.Change{{
				Action: types.ChangeActionUpsert,
				ResourceRecordSet: &types.ResourceRecordSet{
					Name: aws.String(recordName),
					Type: types.RRTypeSrv,
					TTL:  aws.Int64(r.ttl),
					ResourceRecords: []types.ResourceRecord{
						{Value: aws.String(fmt.Sprintf("0 0 %s %s.", port, host))},
					},
				},
			}},
		},
	})
	return err
}

// Deregister removes node's SRV record on graceful departure.
func (r *Route53Bootstrap) Deregister(ctx context.Context, node *domain.Node) error {
	recordName := fmt.Sprintf("%s.%s.", node.ID.Hex(), r.domainSuffix)
	host, port, err := net.SplitHostPort(node.Addr)
	if err != nil {
		return fmt.Errorf("bootstrap: splitting address %s: %w", node.Addr, err)
	}
	_, err = r.client.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(r.hostedZoneID),
		ChangeBatch: &types.ChangeBatch{
			Changes: []types.Change{{
				Action: types.ChangeActionDelete,
				ResourceRecordSet: &types.ResourceRecordSet{
					Name: aws.String(recordName),
					Type: types.RRTypeSrv,
					TTL:  aws.Int64(r.ttl),
					ResourceRecords: []types.ResourceRecord{
						{Value: aws.String(fmt.Sprintf("0 0 %s %s.", port, host))},
					},
				},
			}},
		},
	})
	return err
}
