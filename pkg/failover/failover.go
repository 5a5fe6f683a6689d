// Package failover decides whether the upstream provider changed between
// two probe runs by comparing the persisted network identity with the one
// just resolved.
package failover

import (
	"time"

	"github.com/ChiefGyk3D/netpulse/pkg/models"
)

// Detect compares the previous identity with the current one and returns a
// failover event when the provider changed, or nil. At most one event is
// produced per run.
//
// When both identities carry an ASN, the ASN is authoritative: a new lease
// from the same provider rotates the IP without changing the AS, and that
// must not raise an event. When either side lacks an ASN the public IP is
// the only usable signal and decides instead.
//
// A nil or empty previous identity is a first run and never triggers. An
// empty current identity means resolution failed this run; it never
// triggers either, and the caller keeps the previous state for the next
// comparison.
func Detect(previous *models.NetworkIdentity, current models.NetworkIdentity, at time.Time) *models.FailoverEvent {
	if previous == nil || previous.Empty() {
		return nil
	}
	if current.Empty() {
		return nil
	}

	ipChanged := current.PublicIP != previous.PublicIP
	asnChanged := current.ASN != previous.ASN
	ispChanged := current.ISPName != previous.ISPName

	triggered := ipChanged
	if previous.ASN != "" && current.ASN != "" {
		triggered = asnChanged
	}
	if !triggered {
		return nil
	}

	return &models.FailoverEvent{
		OccurredAt:             at,
		PreviousIP:             previous.PublicIP,
		CurrentIP:              current.PublicIP,
		PreviousASN:            previous.ASN,
		CurrentASN:             current.ASN,
		PreviousISP:            previous.ISPName,
		CurrentISP:             current.ISPName,
		PreviousConnectionType: previous.ConnectionType,
		CurrentConnectionType:  current.ConnectionType,
		IPChanged:              ipChanged,
		ASNChanged:             asnChanged,
		ISPChanged:             ispChanged,
	}
}
