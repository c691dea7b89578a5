package book

import (
	"testing"

	"github.com/stretchr/testify/require"

	"itchbook/internal/errs"
	"itchbook/internal/itch"
)

// scenario 1: Add + Delete leaves both ladders empty.
func TestAddThenDelete(t *testing.T) {
	b := New()
	require.NoError(t, b.AddOrder(1, itch.Buy, 100, 1000000, 0))
	require.NoError(t, b.OrderDelete(1, 1))

	require.Equal(t, 0, b.Bids.Size())
	require.Equal(t, 0, b.Asks.Size())
	require.False(t, b.Has(1))
}

// scenario 2: Add + partial execute leaves the level at reduced quantity.
func TestAddThenPartialExecute(t *testing.T) {
	b := New()
	require.NoError(t, b.AddOrder(1, itch.Buy, 500, 1000000, 0))
	require.NoError(t, b.OrderExecuted(1, 200, 1))

	lvl := b.Bids.Find(1000000)
	require.NotNil(t, lvl)
	require.Equal(t, uint32(300), lvl.TotalQty)
	require.Equal(t, 1, lvl.OrderCount)
}

// scenario 3: Replace lowers price, moving the order to a new level/ref.
func TestReplaceLowersPrice(t *testing.T) {
	b := New()
	require.NoError(t, b.AddOrder(1, itch.Buy, 100, 1000000, 0))
	require.NoError(t, b.OrderReplace(1, 2, 100, 999900, 1))

	require.Nil(t, b.Bids.Find(1000000))
	require.NotNil(t, b.Bids.Find(999900))
	require.False(t, b.Has(1))
	require.True(t, b.Has(2))
}

// scenario 5: over-cancel is fatal and names the offending ref.
func TestOverCancelIsFatal(t *testing.T) {
	b := New()
	require.NoError(t, b.AddOrder(1, itch.Buy, 100, 1000000, 0))

	err := b.OrderCancel(1, 150, 1)
	require.Error(t, err)
	var oc *errs.OverCancel
	require.ErrorAs(t, err, &oc)
	require.Equal(t, uint64(1), oc.Ref)
}

// scenario 6: deleting a ref we never added is silent.
func TestDeleteUnknownRefIsSilent(t *testing.T) {
	b := New()
	require.NoError(t, b.OrderDelete(42, 0))
	require.False(t, b.Has(42))
}

func TestDuplicateOrderRefFails(t *testing.T) {
	b := New()
	require.NoError(t, b.AddOrder(1, itch.Buy, 100, 1000000, 0))
	err := b.AddOrder(1, itch.Sell, 50, 999000, 1)
	require.Error(t, err)
	var dup *errs.DuplicateOrderRef
	require.ErrorAs(t, err, &dup)
}

func TestOverExecuteIsFatal(t *testing.T) {
	b := New()
	require.NoError(t, b.AddOrder(1, itch.Buy, 100, 1000000, 0))
	err := b.OrderExecuted(1, 150, 1)
	require.Error(t, err)
	var oe *errs.OverExecute
	require.ErrorAs(t, err, &oe)
}

// P1 conservation: cumulative remaining across both ladders tracks
// added - executed - canceled - deleted.
func TestConservationAcrossMixedEvents(t *testing.T) {
	b := New()
	require.NoError(t, b.AddOrder(1, itch.Buy, 500, 1000000, 0))
	require.NoError(t, b.AddOrder(2, itch.Sell, 300, 1000100, 0))
	require.NoError(t, b.OrderExecuted(1, 100, 0))
	require.NoError(t, b.OrderCancel(2, 50, 0))
	require.NoError(t, b.OrderDelete(2, 0))

	live := liveRemaining(b)
	expected := b.Stats.Added - b.Stats.Executed - b.Stats.Canceled - b.Stats.Deleted
	require.Equal(t, expected, live)
}

// P3 (I1): level aggregates always equal the sum/count of attached orders.
func TestLevelAggregatesMatchOrders(t *testing.T) {
	b := New()
	require.NoError(t, b.AddOrder(1, itch.Buy, 100, 1000000, 0))
	require.NoError(t, b.AddOrder(2, itch.Buy, 200, 1000000, 0))

	lvl := b.Bids.Find(1000000)
	require.Equal(t, uint32(300), lvl.TotalQty)
	require.Equal(t, 2, lvl.OrderCount)

	var sum uint32
	var count int
	for o := lvl.Head(); o != nil; o = o.next {
		sum += o.Remaining
		count++
	}
	require.Equal(t, lvl.TotalQty, sum)
	require.Equal(t, lvl.OrderCount, count)
}

// P4: bids walk strictly descending, asks strictly ascending.
func TestLadderWalkOrdering(t *testing.T) {
	b := New()
	require.NoError(t, b.AddOrder(1, itch.Buy, 100, 1000000, 0))
	require.NoError(t, b.AddOrder(2, itch.Buy, 100, 1000200, 0))
	require.NoError(t, b.AddOrder(3, itch.Buy, 100, 1000100, 0))

	var prices []uint32
	b.Bids.WalkDesc(func(pl *PriceLevel) bool {
		prices = append(prices, pl.Price)
		return true
	})
	require.Equal(t, []uint32{1000200, 1000100, 1000000}, prices)
}

func liveRemaining(b *Book) uint64 {
	var total uint64
	walk := func(pl *PriceLevel) bool {
		for o := pl.Head(); o != nil; o = o.next {
			total += uint64(o.Remaining)
		}
		return true
	}
	b.Bids.WalkAsc(walk)
	b.Asks.WalkAsc(walk)
	return total
}
