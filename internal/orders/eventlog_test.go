package orders

import (
	"context"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/storeshop/pkg/errors"
	"github.com/angelmondragon/storeshop/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLogSinkAppendsAndLists(t *testing.T) {
	ctx := context.Background()
	sink := NewEventLogSink(setupOrdersTestDB(t))
	at := time.Date(2025, 3, 1, 9, 15, 0, 0, time.Local)

	first, err := sink.Record(ctx, Order{StoreNumber: "100", SAPNumber: "4711", ProductName: "Mug", Quantity: 2, RecordedAt: at})
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	// duplicates are allowed and identifiers are not checked
	_, err = sink.Record(ctx, Order{StoreNumber: "100", SAPNumber: "4711", ProductName: "Mug", Quantity: 5, RecordedAt: at.Add(time.Minute)})
	require.NoError(t, err)
	_, err = sink.Record(ctx, Order{StoreNumber: "999", SAPNumber: "0000", ProductName: "Ghost", Quantity: 1, RecordedAt: at})
	require.NoError(t, err)

	orders, err := sink.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, first.ID, orders[0].ID)
	assert.Equal(t, "2025-03-01 09:15:00", orders[0].Datum())
	assert.True(t, at.Equal(orders[0].RecordedAt))
	assert.Equal(t, 5, orders[1].Quantity)
	assert.Equal(t, "Ghost", orders[2].ProductName)
}

func TestEventLogSinkLatestKeepsNewestPerPair(t *testing.T) {
	ctx := context.Background()
	sink := NewEventLogSink(setupOrdersTestDB(t))
	at := time.Now()

	for _, o := range []Order{
		{StoreNumber: "100", SAPNumber: "4711", Quantity: 1},
		{StoreNumber: "200", SAPNumber: "4711", Quantity: 2},
		{StoreNumber: "100", SAPNumber: "4711", Quantity: 5},
		{StoreNumber: "100", SAPNumber: "4712", Quantity: 3},
	} {
		o.RecordedAt = at
		o.ProductName = "p"
		_, err := sink.Record(ctx, o)
		require.NoError(t, err)
	}

	cells, err := sink.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Cell{
		{StoreNumber: "100", SAPNumber: "4711", Quantity: 5},
		{StoreNumber: "100", SAPNumber: "4712", Quantity: 3},
		{StoreNumber: "200", SAPNumber: "4711", Quantity: 2},
	}, cells)
}

func TestEventLogSinkPagesByCursor(t *testing.T) {
	ctx := context.Background()
	sink := NewEventLogSink(setupOrdersTestDB(t))
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local)
	for i := 1; i <= 5; i++ {
		_, err := sink.Record(ctx, Order{StoreNumber: "100", SAPNumber: "4711", ProductName: "Mug", Quantity: i, RecordedAt: at})
		require.NoError(t, err)
	}

	first, err := sink.Page(ctx, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Orders, 2)
	assert.Equal(t, 1, first.Orders[0].Quantity)
	require.NotEmpty(t, first.NextCursor)

	second, err := sink.Page(ctx, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Orders, 2)
	assert.Equal(t, 3, second.Orders[0].Quantity)

	last, err := sink.Page(ctx, pagination.Params{Limit: 2, Cursor: second.NextCursor})
	require.NoError(t, err)
	require.Len(t, last.Orders, 1)
	assert.Empty(t, last.NextCursor)

	_, err = sink.Page(ctx, pagination.Params{Cursor: "not-a-cursor!"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
