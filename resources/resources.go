// Package resources provides the phone number and SIP domain list
// clients the console renders.
//
// These are consumers, not owners, of the backend's telephony data. Per
// gateway policy, an unauthorized list response degrades to an empty
// result: a list view with a silently expired token shows nothing rather
// than crashing, and the redirect happens on the user's next guarded
// action.
package resources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	console "github.com/sipcha/console-go"
	"github.com/sipcha/console-go/gateway"
)

// Numbers implements console.NumberService.
type Numbers struct {
	gw     *gateway.Client
	logger *slog.Logger
}

// compile-time check
var _ console.NumberService = (*Numbers)(nil)

// NewNumbers creates the phone number list client.
func NewNumbers(gw *gateway.Client) *Numbers {
	return &Numbers{gw: gw, logger: slog.Default()}
}

type numbersEnvelope struct {
	Items []console.Number `json:"items"`
}

// List returns the tenant's provisioned numbers.
func (n *Numbers) List(ctx context.Context) ([]console.Number, error) {
	var env numbersEnvelope
	if err := n.gw.Get(ctx, "/twilio/numbers", &env); err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			n.logger.Debug("numbers list unauthorized, degrading to empty")
			return []console.Number{}, nil
		}
		return nil, fmt.Errorf("console/resources: list numbers: %w", err)
	}
	return env.Items, nil
}

// Domains implements console.SIPDomainService.
type Domains struct {
	gw     *gateway.Client
	logger *slog.Logger
}

// compile-time check
var _ console.SIPDomainService = (*Domains)(nil)

// NewDomains creates the SIP domain list client.
func NewDomains(gw *gateway.Client) *Domains {
	return &Domains{gw: gw, logger: slog.Default()}
}

type domainsEnvelope struct {
	Items []console.SIPDomain `json:"items"`
}

// List returns the tenant's provisioned SIP domains.
func (d *Domains) List(ctx context.Context) ([]console.SIPDomain, error) {
	var env domainsEnvelope
	if err := d.gw.Get(ctx, "/twilio/sip/domains", &env); err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			d.logger.Debug("domains list unauthorized, degrading to empty")
			return []console.SIPDomain{}, nil
		}
		return nil, fmt.Errorf("console/resources: list domains: %w", err)
	}
	return env.Items, nil
}
