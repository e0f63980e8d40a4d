// Package validation enforces the subscriber record invariants at the API
// boundary. Nothing downstream checks them again: a record that passes here
// is what the core network authenticates and polices against.
//
// Validate is a pure function of its input and always collects every
// violation instead of stopping at the first, so a caller can fix all fields
// in one round trip. It assumes defaults have already been applied
// (models.ApplyDefaults).
package validation

import (
	"fmt"
	"regexp"

	"coregw/internal/subscriber/models"
	dErrors "coregw/pkg/domain-errors"
)

// Validation patterns.
var (
	imsiPattern   = regexp.MustCompile(`^[0-9]{14,15}$`)
	key128Pattern = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)
	amfPattern    = regexp.MustCompile(`^[0-9a-fA-F]{4}$`)
	sdPattern     = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)
)

const maxNameLength = 100

// Validate checks rec against every pattern, structural, and cross-field
// rule. It returns the full list of violations, or nil when the record is
// valid.
func Validate(rec *models.SubscriberRecord) []dErrors.Violation {
	var v []dErrors.Violation

	if !imsiPattern.MatchString(rec.IMSI) {
		v = append(v, violation("imsi", "must be a 14-15 digit numeric string"))
	}
	if len(rec.Name) > maxNameLength {
		v = append(v, violation("name", "must be 100 characters or less"))
	}

	v = append(v, validateSecurity(rec.Security)...)
	v = append(v, validateAmbr("ambr", rec.Ambr)...)

	if len(rec.Slices) == 0 {
		v = append(v, violation("slices", "at least one slice is required"))
	}
	for i, sl := range rec.Slices {
		v = append(v, validateSlice(fmt.Sprintf("slices[%d]", i), sl)...)
	}

	return v
}

func validateSecurity(sec *models.Security) []dErrors.Violation {
	if sec == nil {
		return []dErrors.Violation{violation("security", "security bundle is required")}
	}

	var v []dErrors.Violation
	if !key128Pattern.MatchString(sec.K) {
		v = append(v, violation("security.k", "must be 32 hex digits"))
	}
	if !amfPattern.MatchString(sec.Amf) {
		v = append(v, violation("security.amf", "must be 4 hex digits"))
	}
	if sec.Op != "" && !key128Pattern.MatchString(sec.Op) {
		v = append(v, violation("security.op", "must be 32 hex digits"))
	}
	if sec.Opc != "" && !key128Pattern.MatchString(sec.Opc) {
		v = append(v, violation("security.opc", "must be 32 hex digits"))
	}

	// Exactly one of op/opc: provisioning both or neither breaks key
	// derivation on the live network.
	switch {
	case sec.Op != "" && sec.Opc != "":
		v = append(v, violation("security.op", "provide either op or opc, not both"))
	case sec.Op == "" && sec.Opc == "":
		v = append(v, violation("security.opc", "provide one of op or opc"))
	}

	return v
}

func validateAmbr(path string, ambr *models.Ambr) []dErrors.Violation {
	if ambr == nil {
		return []dErrors.Violation{violation(path, "bit rate caps are required")}
	}
	var v []dErrors.Violation
	v = append(v, validateBitrate(path+".uplink", ambr.Uplink)...)
	v = append(v, validateBitrate(path+".downlink", ambr.Downlink)...)
	return v
}

func validateBitrate(path string, br *models.Bitrate) []dErrors.Violation {
	if br == nil {
		return []dErrors.Violation{violation(path, "rate spec is required")}
	}
	var v []dErrors.Violation
	if br.Value < 0 {
		v = append(v, violation(path+".value", "must be non-negative"))
	}
	if br.Unit < models.UnitBps || br.Unit > models.UnitGbps {
		v = append(v, violation(path+".unit", "must be 0 (bps), 1 (Kbps), 2 (Mbps) or 3 (Gbps)"))
	}
	return v
}

func validateSlice(path string, sl models.Slice) []dErrors.Violation {
	var v []dErrors.Violation
	if !sdPattern.MatchString(sl.Sd) {
		v = append(v, violation(path+".sd", "must be 6 hex digits"))
	}
	if len(sl.Session) == 0 {
		v = append(v, violation(path+".session", "at least one session is required"))
	}
	for j, sess := range sl.Session {
		v = append(v, validateSession(fmt.Sprintf("%s.session[%d]", path, j), sess)...)
	}
	return v
}

func validateSession(path string, sess models.Session) []dErrors.Violation {
	var v []dErrors.Violation
	if sess.Nssai == nil {
		v = append(v, violation(path+".nssai", "slice descriptor is required"))
	} else if sess.Nssai.Sd != "" && !sdPattern.MatchString(sess.Nssai.Sd) {
		v = append(v, violation(path+".nssai.sd", "must be 6 hex digits"))
	}
	if sess.Qos == nil {
		v = append(v, violation(path+".qos", "qos profile is required"))
	} else if sess.Qos.PriorityLevel < 1 || sess.Qos.PriorityLevel > 15 {
		v = append(v, violation(path+".qos.priorityLevel", "must be between 1 and 15"))
	}
	v = append(v, validateAmbr(path+".ambr", sess.Ambr)...)
	return v
}

func violation(field, reason string) dErrors.Violation {
	return dErrors.Violation{Field: field, Reason: reason}
}
