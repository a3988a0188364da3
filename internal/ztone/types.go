package ztone

// Network is one entry of the backend's network listing.
type Network struct {
	ID                string   `json:"id"`
	NWID              string   `json:"nwid"`
	Name              string   `json:"name"`
	Status            string   `json:"status"`
	Type              string   `json:"type"`
	MAC               string   `json:"mac"`
	MTU               int      `json:"mtu"`
	DHCP              bool     `json:"dhcp"`
	Bridge            bool     `json:"bridge"`
	PortDeviceName    string   `json:"portDeviceName"`
	AllowDefault      bool     `json:"allowDefault"`
	AllowGlobal       bool     `json:"allowGlobal"`
	AllowManaged      bool     `json:"allowManaged"`
	AllowDNS          bool     `json:"allowDNS"`
	AssignedAddresses []string `json:"assignedAddresses"`
}

// DisplayName returns the network name, substituting a placeholder when the
// controller reported none.
func (n Network) DisplayName() string {
	if n.Name == "" {
		return "Unknown Name"
	}
	return n.Name
}

// Peer is one entry of the backend's peer listing.
type Peer struct {
	Address string     `json:"address"`
	Version string     `json:"version"`
	Role    string     `json:"role"`
	Latency int        `json:"latency"`
	Paths   []PeerPath `json:"paths"`
}

// DisplayVersion returns the peer version, substituting a dash for the
// sentinel the backend reports when the version is unknown.
func (p Peer) DisplayVersion() string {
	if p.Version == "-1.-1.-1" {
		return "-"
	}
	return p.Version
}

// PeerPath is one physical path of a peer.
type PeerPath struct {
	Active        bool   `json:"active"`
	Address       string `json:"address"`
	Expired       bool   `json:"expired"`
	LastReceive   int64  `json:"lastReceive"`
	LastSend      int64  `json:"lastSend"`
	Preferred     bool   `json:"preferred"`
	TrustedPathID int64  `json:"trustedPathId"`
}

// NodeStatus is the parsed output of the backend status line.
type NodeStatus struct {
	Address string
	Version string
	Health  string
}
