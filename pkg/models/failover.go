package models

import "time"

// FailoverEvent records a detected switch of the upstream provider, built
// from the persisted identity of the previous run and the identity observed
// in the current one.
type FailoverEvent struct {
	OccurredAt time.Time `json:"occurred_at"`

	PreviousIP string `json:"previous_ip"`
	CurrentIP  string `json:"current_ip"`

	PreviousASN string `json:"previous_asn"`
	CurrentASN  string `json:"current_asn"`

	PreviousISP string `json:"previous_isp"`
	CurrentISP  string `json:"current_isp"`

	PreviousConnectionType ConnectionType `json:"previous_connection_type"`
	CurrentConnectionType  ConnectionType `json:"current_connection_type"`

	IPChanged  bool `json:"ip_changed"`
	ASNChanged bool `json:"asn_changed"`
	ISPChanged bool `json:"isp_changed"`
}
