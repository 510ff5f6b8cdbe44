package awssecurity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
)

// GroupAdmin is the network ingress-rule admin backed by EC2.
type GroupAdmin struct {
	client ec2SecurityAPIClient
}

// DescribeIngressRules returns the group's inbound permissions in API
// order, one IngressRule per IpPermission carrying its IPv4 ranges.
// A group that does not exist returns models.ErrNotFound.
func (a *GroupAdmin) DescribeIngressRules(ctx context.Context, groupID string) ([]models.IngressRule, error) {
	out, err := a.client.DescribeSecurityGroups(ctx, &ec2svc.DescribeSecurityGroupsInput{
		GroupIds: []string{groupID},
	})
	if err != nil {
		return nil, translate("describe security group "+groupID, err, codeGroupNotFound)
	}
	if len(out.SecurityGroups) == 0 {
		return nil, fmt.Errorf("describe security group %s: %w", groupID, models.ErrNotFound)
	}

	var rules []models.IngressRule
	for _, perm := range out.SecurityGroups[0].IpPermissions {
		rule := models.IngressRule{
			Protocol: aws.ToString(perm.IpProtocol),
			FromPort: perm.FromPort,
			ToPort:   perm.ToPort,
		}
		for _, r := range perm.IpRanges {
			rule.CIDRs = append(rule.CIDRs, aws.ToString(r.CidrIp))
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// RevokeIngressRule revokes exactly one (protocol, port range, CIDR)
// permission. When EC2 reports the permission as unknown (either as an
// InvalidPermission.NotFound error or in UnknownIpPermissions), the rule is
// already gone and models.ErrNotFound is returned.
func (a *GroupAdmin) RevokeIngressRule(ctx context.Context, groupID string, rev models.IngressRevocation) error {
	op := fmt.Sprintf("revoke %s %d-%d from %s on %s", rev.Protocol, rev.FromPort, rev.ToPort, rev.CIDR, groupID)
	out, err := a.client.RevokeSecurityGroupIngress(ctx, &ec2svc.RevokeSecurityGroupIngressInput{
		GroupId: aws.String(groupID),
		IpPermissions: []ec2types.IpPermission{{
			IpProtocol: aws.String(rev.Protocol),
			FromPort:   aws.Int32(rev.FromPort),
			ToPort:     aws.Int32(rev.ToPort),
			IpRanges:   []ec2types.IpRange{{CidrIp: aws.String(rev.CIDR)}},
		}},
	})
	if err != nil {
		return translate(op, err, codePermissionNotFound)
	}
	if len(out.UnknownIpPermissions) > 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}
