// Package models defines the subscriber record persisted for the core
// network. The JSON field names are a wire contract: the HSS/UDM processes
// read the subscriber store directly and expect exactly this shape, so no
// wrapper fields may be introduced and no field may be renamed.
package models

import "strings"

// Bitrate units. Fixed integer enum, must not be renumbered: the core
// network interprets the stored value.
const (
	UnitBps  = 0
	UnitKbps = 1
	UnitMbps = 2
	UnitGbps = 3
)

// Defaults applied to unset optional fields before validation.
const (
	DefaultAmbrValue             = 1000000000
	DefaultAmbrUnit              = UnitBps
	DefaultAmf                   = "8000"
	DefaultSd                    = "000001"
	DefaultQosIndex              = 9
	DefaultQosPriorityLevel      = 8
	DefaultSessionName           = "internet"
	DefaultSessionType           = 3 // PDN type: 1=IPv4, 2=IPv6, 3=IPv4v6
	DefaultSubscribedRauTauTimer = 12
	DefaultAccessRestriction     = 32
	DefaultSchemaVersion         = 1
)

// Bitrate is a rate cap in a single direction.
type Bitrate struct {
	Value int64 `json:"value"`
	Unit  int   `json:"unit"`
}

// Ambr is the aggregate maximum bit rate, one cap per direction. A record
// must always carry both directions.
type Ambr struct {
	Uplink   *Bitrate `json:"uplink"`
	Downlink *Bitrate `json:"downlink"`
}

// Qos selects the scheduling treatment for a session (5QI/QCI plus ARP
// priority level 1-15).
type Qos struct {
	Index         int `json:"index"`
	PriorityLevel int `json:"priorityLevel"`
}

// Nssai is the slice-selection descriptor attached to a session.
type Nssai struct {
	Sst int    `json:"sst"`
	Sd  string `json:"sd,omitempty"`
}

// Session is a data session (APN/DNN) configured inside a slice.
type Session struct {
	Name  string `json:"name"`
	Type  int    `json:"type"`
	Nssai *Nssai `json:"nssai"`
	Qos   *Qos   `json:"qos"`
	Ambr  *Ambr  `json:"ambr"`
}

// Slice is a network slice entitlement. A slice exclusively owns its
// session list; sessions are never shared across slices.
type Slice struct {
	Sst              int       `json:"sst"`
	Sd               string    `json:"sd"`
	DefaultIndicator bool      `json:"defaultIndicator"`
	Session          []Session `json:"session"`
}

// Security is the authentication bundle. Exactly one of Op and Opc must be
// non-empty: provisioning both (or neither) silently breaks authentication
// in the live network, so the invariant is enforced at the API boundary.
type Security struct {
	K   string `json:"k"`
	Amf string `json:"amf"`
	Op  string `json:"op,omitempty"`
	Opc string `json:"opc,omitempty"`
}

// SubscriberRecord is the root entity, identified by IMSI. The IMSI is
// globally unique and immutable once assigned.
type SubscriberRecord struct {
	IMSI                      string    `json:"imsi"`
	Name                      string    `json:"name,omitempty"`
	Msisdn                    []string  `json:"msisdn"`
	SchemaVersion             int       `json:"schemaVersion"`
	Security                  *Security `json:"security"`
	Ambr                      *Ambr     `json:"ambr"`
	Slices                    []Slice   `json:"slices"`
	SubscribedRauTauTimer     int       `json:"subscribedRauTauTimer"`
	NetworkAccessMode         int       `json:"networkAccessMode"`
	SubscriberStatus          int       `json:"subscriberStatus"`
	OperatorDeterminedBarring int       `json:"operatorDeterminedBarring"`
	AccessRestrictionData     int       `json:"accessRestrictionData"`
}

// DefaultAmbr returns a fresh bidirectional rate cap with default values.
func DefaultAmbr() *Ambr {
	return &Ambr{
		Uplink:   &Bitrate{Value: DefaultAmbrValue, Unit: DefaultAmbrUnit},
		Downlink: &Bitrate{Value: DefaultAmbrValue, Unit: DefaultAmbrUnit},
	}
}

// ApplyDefaults fills unset optional fields with their defaults and
// normalizes hex material. It runs as an explicit step before validation so
// dependent rules see the final values. Integer fields whose default is
// non-zero treat zero as unset; for fields whose default is zero the two are
// indistinguishable and equivalent.
func (r *SubscriberRecord) ApplyDefaults() {
	if r.Msisdn == nil {
		r.Msisdn = []string{}
	}
	if r.SchemaVersion == 0 {
		r.SchemaVersion = DefaultSchemaVersion
	}
	if r.SubscribedRauTauTimer == 0 {
		r.SubscribedRauTauTimer = DefaultSubscribedRauTauTimer
	}
	if r.AccessRestrictionData == 0 {
		r.AccessRestrictionData = DefaultAccessRestriction
	}
	if r.Ambr == nil {
		r.Ambr = DefaultAmbr()
	}

	if r.Security != nil {
		r.Security.K = normalizeHex(r.Security.K)
		r.Security.Op = normalizeHex(r.Security.Op)
		r.Security.Opc = normalizeHex(r.Security.Opc)
		r.Security.Amf = normalizeHex(r.Security.Amf)
		if r.Security.Amf == "" {
			r.Security.Amf = DefaultAmf
		}
	}

	for i := range r.Slices {
		sl := &r.Slices[i]
		if sl.Sd == "" {
			sl.Sd = DefaultSd
		}
		sl.Sd = normalizeHex(sl.Sd)
		for j := range sl.Session {
			sess := &sl.Session[j]
			if sess.Name == "" {
				sess.Name = DefaultSessionName
			}
			if sess.Type == 0 {
				sess.Type = DefaultSessionType
			}
			// A session without its own slice descriptor inherits the
			// enclosing slice's identity.
			if sess.Nssai == nil {
				sess.Nssai = &Nssai{Sst: sl.Sst, Sd: sl.Sd}
			} else if sess.Nssai.Sd != "" {
				sess.Nssai.Sd = normalizeHex(sess.Nssai.Sd)
			}
			if sess.Qos == nil {
				sess.Qos = &Qos{Index: DefaultQosIndex, PriorityLevel: DefaultQosPriorityLevel}
			} else {
				if sess.Qos.Index == 0 {
					sess.Qos.Index = DefaultQosIndex
				}
				if sess.Qos.PriorityLevel == 0 {
					sess.Qos.PriorityLevel = DefaultQosPriorityLevel
				}
			}
			if sess.Ambr == nil {
				sess.Ambr = DefaultAmbr()
			}
		}
	}
}

// normalizeHex strips embedded spaces (WebUI paste compatibility) and
// lowercases hex material so stored keys compare bytewise.
func normalizeHex(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}

// Clone returns a deep copy so stores never alias caller-owned records.
func (r *SubscriberRecord) Clone() *SubscriberRecord {
	if r == nil {
		return nil
	}
	out := *r
	if r.Msisdn != nil {
		out.Msisdn = append([]string(nil), r.Msisdn...)
	}
	if r.Security != nil {
		sec := *r.Security
		out.Security = &sec
	}
	out.Ambr = r.Ambr.clone()
	if r.Slices != nil {
		out.Slices = make([]Slice, len(r.Slices))
		for i, sl := range r.Slices {
			cp := sl
			if sl.Session != nil {
				cp.Session = make([]Session, len(sl.Session))
				for j, sess := range sl.Session {
					sc := sess
					if sess.Nssai != nil {
						n := *sess.Nssai
						sc.Nssai = &n
					}
					if sess.Qos != nil {
						q := *sess.Qos
						sc.Qos = &q
					}
					sc.Ambr = sess.Ambr.clone()
					cp.Session[j] = sc
				}
			}
			out.Slices[i] = cp
		}
	}
	return &out
}

func (a *Ambr) clone() *Ambr {
	if a == nil {
		return nil
	}
	out := &Ambr{}
	if a.Uplink != nil {
		up := *a.Uplink
		out.Uplink = &up
	}
	if a.Downlink != nil {
		down := *a.Downlink
		out.Downlink = &down
	}
	return out
}
