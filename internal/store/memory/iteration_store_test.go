package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/wardenhub/internal/models"
	"github.com/wolfeidau/wardenhub/internal/store"
)

func newIteration(t *testing.T, orgID uuid.UUID, ordinal int64) *models.WardenIteration {
	t.Helper()

	started := time.Now().UTC()
	it, err := models.NewWardenIteration(orgID, ordinal, nil, started, started.Add(time.Second))
	require.NoError(t, err)

	return it
}

func TestMemoryIterationStore_Append(t *testing.T) {
	t.Run("ordinals must strictly increase", func(t *testing.T) {
		st := NewIterationStore()
		orgID := uuid.Must(uuid.NewV7())
		ctx := context.Background()

		require.NoError(t, st.Append(ctx, newIteration(t, orgID, 0)))
		require.NoError(t, st.Append(ctx, newIteration(t, orgID, 1)))

		err := st.Append(ctx, newIteration(t, orgID, 1))
		require.ErrorIs(t, err, store.ErrOrdinalNotIncreasing)

		err = st.Append(ctx, newIteration(t, orgID, 0))
		require.ErrorIs(t, err, store.ErrOrdinalNotIncreasing)
	})

	t.Run("streams are independent per organization", func(t *testing.T) {
		st := NewIterationStore()
		ctx := context.Background()

		require.NoError(t, st.Append(ctx, newIteration(t, uuid.Must(uuid.NewV7()), 0)))
		require.NoError(t, st.Append(ctx, newIteration(t, uuid.Must(uuid.NewV7()), 0)))
	})
}

func TestMemoryIterationStore_LastOrdinal(t *testing.T) {
	st := NewIterationStore()
	orgID := uuid.Must(uuid.NewV7())
	ctx := context.Background()

	last, err := st.LastOrdinal(ctx, orgID)
	require.NoError(t, err)
	require.Equal(t, int64(-1), last)

	require.NoError(t, st.Append(ctx, newIteration(t, orgID, 0)))
	require.NoError(t, st.Append(ctx, newIteration(t, orgID, 1)))

	last, err = st.LastOrdinal(ctx, orgID)
	require.NoError(t, err)
	require.Equal(t, int64(1), last)
}

func TestMemoryIterationStore_ListByOrganization(t *testing.T) {
	st := NewIterationStore()
	orgID := uuid.Must(uuid.NewV7())
	ctx := context.Background()

	for i := int64(0); i < 5; i++ {
		require.NoError(t, st.Append(ctx, newIteration(t, orgID, i)))
	}

	t.Run("newest first with limit", func(t *testing.T) {
		iterations, err := st.ListByOrganization(ctx, orgID, 3)
		require.NoError(t, err)
		require.Len(t, iterations, 3)
		require.Equal(t, int64(4), iterations[0].Ordinal)
		require.Equal(t, int64(2), iterations[2].Ordinal)
	})

	t.Run("unknown organization yields empty list", func(t *testing.T) {
		iterations, err := st.ListByOrganization(ctx, uuid.Must(uuid.NewV7()), 0)
		require.NoError(t, err)
		require.Empty(t, iterations)
	})
}
