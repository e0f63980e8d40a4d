package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults_FillsUnsetFields(t *testing.T) {
	rec := &SubscriberRecord{
		IMSI: "001010000000001",
		Security: &Security{
			K:   "465B5CE8B199B49FAA5F0A2EE238A6BC",
			Opc: "E8ED289DEBA952E4283B54E88E6183CA",
		},
		Slices: []Slice{
			{Sst: 1, Session: []Session{{}}},
		},
	}

	rec.ApplyDefaults()

	assert.Equal(t, DefaultSchemaVersion, rec.SchemaVersion)
	assert.Equal(t, DefaultSubscribedRauTauTimer, rec.SubscribedRauTauTimer)
	assert.Equal(t, DefaultAccessRestriction, rec.AccessRestrictionData)
	assert.NotNil(t, rec.Msisdn)

	require.NotNil(t, rec.Ambr)
	assert.Equal(t, int64(DefaultAmbrValue), rec.Ambr.Uplink.Value)
	assert.Equal(t, int64(DefaultAmbrValue), rec.Ambr.Downlink.Value)

	assert.Equal(t, DefaultAmf, rec.Security.Amf)

	sl := rec.Slices[0]
	assert.Equal(t, DefaultSd, sl.Sd)

	sess := sl.Session[0]
	assert.Equal(t, DefaultSessionName, sess.Name)
	assert.Equal(t, DefaultSessionType, sess.Type)
	require.NotNil(t, sess.Qos)
	assert.Equal(t, DefaultQosIndex, sess.Qos.Index)
	assert.Equal(t, DefaultQosPriorityLevel, sess.Qos.PriorityLevel)
	require.NotNil(t, sess.Ambr)
}

func TestApplyDefaults_NormalizesHexMaterial(t *testing.T) {
	rec := &SubscriberRecord{
		Security: &Security{
			K:   "465B 5CE8 B199 B49F AA5F 0A2E E238 A6BC",
			Opc: "E8ED289DEBA952E4283B54E88E6183CA",
			Amf: "80 00",
		},
	}

	rec.ApplyDefaults()

	assert.Equal(t, "465b5ce8b199b49faa5f0a2ee238a6bc", rec.Security.K)
	assert.Equal(t, "e8ed289deba952e4283b54e88e6183ca", rec.Security.Opc)
	assert.Equal(t, "8000", rec.Security.Amf)
}

func TestApplyDefaults_SessionInheritsSliceIdentity(t *testing.T) {
	rec := &SubscriberRecord{
		Slices: []Slice{
			{Sst: 2, Sd: "ABCDEF", Session: []Session{{}}},
		},
	}

	rec.ApplyDefaults()

	nssai := rec.Slices[0].Session[0].Nssai
	require.NotNil(t, nssai)
	assert.Equal(t, 2, nssai.Sst)
	assert.Equal(t, "abcdef", nssai.Sd)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	rec := &SubscriberRecord{
		SchemaVersion:         2,
		SubscribedRauTauTimer: 30,
		Ambr: &Ambr{
			Uplink:   &Bitrate{Value: 500, Unit: UnitMbps},
			Downlink: &Bitrate{Value: 1, Unit: UnitGbps},
		},
	}

	rec.ApplyDefaults()

	assert.Equal(t, 2, rec.SchemaVersion)
	assert.Equal(t, 30, rec.SubscribedRauTauTimer)
	assert.Equal(t, int64(500), rec.Ambr.Uplink.Value)
	assert.Equal(t, UnitGbps, rec.Ambr.Downlink.Unit)
}

func TestClone_IsDeep(t *testing.T) {
	rec := &SubscriberRecord{
		IMSI:   "001010000000001",
		Msisdn: []string{"821012345678"},
		Security: &Security{
			K:   "465b5ce8b199b49faa5f0a2ee238a6bc",
			Amf: "8000",
			Opc: "e8ed289deba952e4283b54e88e6183ca",
		},
		Ambr: DefaultAmbr(),
		Slices: []Slice{
			{
				Sst: 1,
				Sd:  "000001",
				Session: []Session{
					{
						Name:  "internet",
						Nssai: &Nssai{Sst: 1, Sd: "000001"},
						Qos:   &Qos{Index: 9, PriorityLevel: 8},
						Ambr:  DefaultAmbr(),
					},
				},
			},
		},
	}

	cp := rec.Clone()
	require.Equal(t, rec, cp)

	cp.Msisdn[0] = "mutated"
	cp.Security.K = "mutated"
	cp.Ambr.Uplink.Value = 0
	cp.Slices[0].Session[0].Qos.Index = 1
	cp.Slices[0].Session[0].Nssai.Sd = "ffffff"

	assert.Equal(t, "821012345678", rec.Msisdn[0])
	assert.Equal(t, "465b5ce8b199b49faa5f0a2ee238a6bc", rec.Security.K)
	assert.Equal(t, int64(DefaultAmbrValue), rec.Ambr.Uplink.Value)
	assert.Equal(t, 9, rec.Slices[0].Session[0].Qos.Index)
	assert.Equal(t, "000001", rec.Slices[0].Session[0].Nssai.Sd)
}

func TestClone_Nil(t *testing.T) {
	var rec *SubscriberRecord
	assert.Nil(t, rec.Clone())
}
