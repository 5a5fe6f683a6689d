package ipinfo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pion/stun/v3"

	"github.com/ChiefGyk3D/netpulse/pkg/models"
)

// stunProvider is the last-resort provider: a STUN binding request reveals
// the public address even when the HTTP geolocation services are down. It
// only knows the IP; ASN and ISP stay empty, which still feeds the failover
// comparison.
type stunProvider struct {
	server  string
	timeout time.Duration
}

func (p *stunProvider) Name() string { return "stun" }

func (p *stunProvider) Resolve(ctx context.Context) (models.NetworkIdentity, error) {
	uriStr := strings.TrimSpace(p.server)
	if uriStr == "" {
		return models.NetworkIdentity{}, fmt.Errorf("empty STUN server")
	}
	if !strings.HasPrefix(uriStr, "stun:") {
		uriStr = "stun:" + uriStr
	}

	uri, err := stun.ParseURI(uriStr)
	if err != nil {
		return models.NetworkIdentity{}, err
	}

	client, err := stun.DialURI(uri, &stun.DialConfig{})
	if err != nil {
		return models.NetworkIdentity{}, err
	}
	defer client.Close()

	msg := stun.MustBuild(stun.TransactionID, stun.BindingRequest)
	result := make(chan stun.XORMappedAddress, 1)
	fail := make(chan error, 1)

	go func() {
		var addr stun.XORMappedAddress
		err := client.Do(msg, func(res stun.Event) {
			if res.Error != nil {
				fail <- res.Error
				return
			}
			if err := addr.GetFrom(res.Message); err != nil {
				fail <- err
				return
			}
			result <- addr
		})
		if err != nil {
			fail <- err
		}
	}()

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	select {
	case addr := <-result:
		return models.NetworkIdentity{PublicIP: addr.IP.String()}, nil
	case err := <-fail:
		return models.NetworkIdentity{}, err
	case <-ctx.Done():
		return models.NetworkIdentity{}, ctx.Err()
	}
}
