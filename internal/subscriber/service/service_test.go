package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coregw/internal/subscriber/models"
	"coregw/internal/subscriber/store"
	dErrors "coregw/pkg/domain-errors"
	"coregw/pkg/platform/audit"
)

type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.Action
	imsis  []string
}

func (a *recordingAuditor) Emit(_ context.Context, action audit.Action, imsi string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, action)
	a.imsis = append(a.imsis, imsi)
}

func newTestService() (*Service, *store.InMemory, *recordingAuditor) {
	st := store.NewInMemory()
	auditor := &recordingAuditor{}
	svc := New(st, WithAuditor(auditor))
	return svc, st, auditor
}

func newRecord(imsi string) *models.SubscriberRecord {
	return &models.SubscriberRecord{
		IMSI: imsi,
		Name: "test-ue",
		Security: &models.Security{
			K:   "465b5ce8b199b49faa5f0a2ee238a6bc",
			Opc: "e8ed289deba952e4283b54e88e6183ca",
		},
		Slices: []models.Slice{
			{Sst: 1, DefaultIndicator: true, Session: []models.Session{{}}},
		},
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("fills defaults and persists", func(t *testing.T) {
		svc, st, auditor := newTestService()

		created, err := svc.Register(ctx, newRecord("001010000000001"))
		require.NoError(t, err)
		assert.Equal(t, models.DefaultSchemaVersion, created.SchemaVersion)
		assert.Equal(t, models.DefaultAmf, created.Security.Amf)

		stored, err := st.GetByIMSI(ctx, "001010000000001")
		require.NoError(t, err)
		assert.Equal(t, created, stored)

		assert.Equal(t, []audit.Action{audit.ActionSubscriberCreated}, auditor.events)
		assert.Equal(t, []string{"001010000000001"}, auditor.imsis)
	})

	t.Run("rejects invalid record with full violation list", func(t *testing.T) {
		svc, _, auditor := newTestService()

		rec := newRecord("001010000000001")
		rec.IMSI = "bad"
		rec.Security.K = "short"

		_, err := svc.Register(ctx, rec)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

		var de *dErrors.Error
		require.ErrorAs(t, err, &de)
		assert.Len(t, de.Violations, 2)
		assert.Empty(t, auditor.events)
	})

	t.Run("rejects duplicate IMSI", func(t *testing.T) {
		svc, _, _ := newTestService()

		_, err := svc.Register(ctx, newRecord("001010000000001"))
		require.NoError(t, err)

		_, err = svc.Register(ctx, newRecord("001010000000001"))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeDuplicateKey))
		assert.Contains(t, err.Error(), "001010000000001")
	})
}

func TestReplace(t *testing.T) {
	ctx := context.Background()

	t.Run("path IMSI wins over payload IMSI", func(t *testing.T) {
		svc, st, auditor := newTestService()

		_, err := svc.Register(ctx, newRecord("001010000000001"))
		require.NoError(t, err)

		payload := newRecord("999990000000099")
		payload.Name = "renamed"
		require.NoError(t, svc.Replace(ctx, "001010000000001", payload))

		stored, err := st.GetByIMSI(ctx, "001010000000001")
		require.NoError(t, err)
		assert.Equal(t, "001010000000001", stored.IMSI)
		assert.Equal(t, "renamed", stored.Name)

		// No record appears under the payload's IMSI.
		_, err = st.GetByIMSI(ctx, "999990000000099")
		require.Error(t, err)

		assert.Equal(t, audit.ActionSubscriberReplaced, auditor.events[len(auditor.events)-1])
	})

	t.Run("unknown IMSI is not found", func(t *testing.T) {
		svc, _, _ := newTestService()

		err := svc.Replace(ctx, "001010000000001", newRecord("001010000000001"))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("replacement is validated", func(t *testing.T) {
		svc, _, _ := newTestService()

		_, err := svc.Register(ctx, newRecord("001010000000001"))
		require.NoError(t, err)

		payload := newRecord("001010000000001")
		payload.Slices = nil
		err = svc.Replace(ctx, "001010000000001", payload)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the record", func(t *testing.T) {
		svc, st, auditor := newTestService()

		_, err := svc.Register(ctx, newRecord("001010000000001"))
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, "001010000000001"))
		_, err = st.GetByIMSI(ctx, "001010000000001")
		require.Error(t, err)

		assert.Equal(t, audit.ActionSubscriberDeleted, auditor.events[len(auditor.events)-1])
	})

	t.Run("unknown IMSI is not found", func(t *testing.T) {
		svc, _, _ := newTestService()

		err := svc.Delete(ctx, "001010000000001")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects bad pagination", func(t *testing.T) {
		svc, _, _ := newTestService()

		_, err := svc.List(ctx, store.Filter{}, 0, 0)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

		_, err = svc.List(ctx, store.Filter{}, 10, -1)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("empty store yields empty slice", func(t *testing.T) {
		svc, _, _ := newTestService()

		records, err := svc.List(ctx, store.Filter{}, 10, 0)
		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	})

	t.Run("registered record round-trips through list", func(t *testing.T) {
		svc, _, _ := newTestService()

		created, err := svc.Register(ctx, newRecord("001010000000001"))
		require.NoError(t, err)

		records, err := svc.List(ctx, store.Filter{}, 10, 0)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, created, records[0])
	})
}
