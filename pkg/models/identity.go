package models

import "time"

type ConnectionType string

const (
	ConnectionCable    ConnectionType = "cable"
	ConnectionCellular ConnectionType = "cellular"
	ConnectionFiber    ConnectionType = "fiber"
	ConnectionDSL      ConnectionType = "dsl"
	ConnectionUnknown  ConnectionType = "unknown"
)

// NetworkIdentity is the externally visible identity of the monitored link.
// It is what the persisted state file stores between runs, so the JSON keys
// are part of the on-disk format and must stay stable.
type NetworkIdentity struct {
	PublicIP       string         `json:"public_ip"`
	ASN            string         `json:"asn"` // e.g. "AS7922", empty when unresolved
	ISPName        string         `json:"isp_name"`
	ConnectionType ConnectionType `json:"connection_type"`
	LastSeen       time.Time      `json:"last_seen"`
}

// Empty reports whether no public address was resolved. An identity without
// an IP carries nothing worth comparing or persisting.
func (n NetworkIdentity) Empty() bool {
	return n.PublicIP == ""
}
