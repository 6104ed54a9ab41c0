package service

import (
	"context"
	"testing"

	"compara-mercado/internal/domain"
	"compara-mercado/internal/kvstore"
	"compara-mercado/internal/repository"
	"compara-mercado/internal/websocket"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShoppingList_AddMergesCatalogItems(t *testing.T) {
	f := newListFixture(t)
	ctx := context.Background()

	first, err := f.service.Add(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Quantity)

	second, err := f.service.Add(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Quantity)

	items := f.service.Items(ctx)
	require.Len(t, items, 1)
	assert.False(t, items[0].Checked)

	total, err := f.service.Total(ctx)
	require.NoError(t, err)
	assert.True(t, total.Equal(domain.Price(9.78)), "got %s", total)
}

func TestShoppingList_AddUnknownProduct(t *testing.T) {
	f := newListFixture(t)

	_, err := f.service.Add(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
	assert.Empty(t, f.service.Items(context.Background()))
}

func TestShoppingList_AddManual(t *testing.T) {
	f := newListFixture(t)
	ctx := context.Background()

	_, err := f.service.AddManual(ctx, "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyItemName)

	a, err := f.service.AddManual(ctx, "  Sabão em pó ")
	require.NoError(t, err)
	b, err := f.service.AddManual(ctx, "Sabão em pó")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	name, ok := a.ManualName()
	require.True(t, ok)
	assert.Equal(t, "Sabão em pó", name)

	total, err := f.service.Total(ctx)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestShoppingList_UpdateAndRemove(t *testing.T) {
	f := newListFixture(t)
	ctx := context.Background()

	item, err := f.service.Add(ctx, "p2")
	require.NoError(t, err)

	zero := 0
	checked := true
	updated, err := f.service.Update(ctx, item.ID, domain.ItemUpdate{Quantity: &zero, Checked: &checked})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Quantity)
	assert.True(t, updated.Checked)

	_, err = f.service.Update(ctx, "missing", domain.ItemUpdate{Checked: &checked})
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = f.service.Update(ctx, item.ID, domain.ItemUpdate{})
	assert.ErrorIs(t, err, domain.ErrEmptyUpdate)

	require.NoError(t, f.service.Remove(ctx, "missing"))
	assert.Len(t, f.service.Items(ctx), 1)

	require.NoError(t, f.service.Remove(ctx, item.ID))
	assert.Empty(t, f.service.Items(ctx))
}

func TestShoppingList_ClearChecked(t *testing.T) {
	f := newListFixture(t)
	ctx := context.Background()

	keep, err := f.service.Add(ctx, "p1")
	require.NoError(t, err)
	done, err := f.service.AddManual(ctx, "Pão")
	require.NoError(t, err)

	checked := true
	_, err = f.service.Update(ctx, done.ID, domain.ItemUpdate{Checked: &checked})
	require.NoError(t, err)

	removed, err := f.service.ClearChecked(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	items := f.service.Items(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, keep.ID, items[0].ID)

	removed, err = f.service.ClearChecked(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestShoppingList_PersistsAcrossRestart(t *testing.T) {
	f := newListFixture(t)
	ctx := context.Background()

	_, err := f.service.Add(ctx, "p3")
	require.NoError(t, err)
	_, err = f.service.AddManual(ctx, "Ovos")
	require.NoError(t, err)

	restarted := f.reload(t)
	assert.Equal(t, f.service.Items(ctx), restarted.Items(ctx))
}

func TestShoppingList_NotifiesAndCounts(t *testing.T) {
	f := newListFixture(t)
	ctx := context.Background()

	_, err := f.service.Add(ctx, "p1")
	require.NoError(t, err)
	require.NoError(t, f.service.Remove(ctx, "missing"))

	assert.Equal(t, []string{websocket.EventShoppingListUpdated}, f.publisher.Events())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ListMutations.WithLabelValues("add")))
}

func TestShoppingList_ListView(t *testing.T) {
	f := newListFixture(t)
	ctx := context.Background()

	_, err := f.service.Add(ctx, "p1")
	require.NoError(t, err)
	_, err = f.service.Add(ctx, "p1")
	require.NoError(t, err)
	_, err = f.service.AddManual(ctx, "Ovos")
	require.NoError(t, err)

	// an item whose product has left the catalog
	require.NoError(t, f.store.Set(ctx, kvstore.KeyShoppingList, []byte(`[{"id":"x","productId":"gone","quantity":3,"checked":false}]`)))
	ghost := f.reload(t)
	ghostView, err := ghost.List(ctx)
	require.NoError(t, err)
	require.Len(t, ghostView.Items, 1)
	assert.Equal(t, UnknownProductName, ghostView.Items[0].Name)
	assert.True(t, ghostView.Total.IsZero())

	view, err := f.service.List(ctx)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, "Leite Integral 1L", view.Items[0].Name)
	assert.Equal(t, "1", view.Items[0].SupermarketID)
	assert.True(t, view.Items[0].Subtotal.Equal(domain.Price(9.78)))
	assert.Equal(t, "Ovos", view.Items[1].Name)
	assert.Nil(t, view.Items[1].UnitPrice)
	assert.True(t, view.Total.Equal(domain.Price(9.78)))
}

// Feature: shopping-list, Property: the total is the sum of best price times quantity over priced catalog items
func TestProperty_TotalMatchesBestPrices(t *testing.T) {
	products := newTestProducts()

	properties := gopter.NewProperties(nil)

	properties.Property("total equals the independent sum", prop.ForAll(
		func(refs []string, quantities []int) bool {
			items := make([]domain.ShoppingListItem, len(refs))
			expected := decimal.Zero
			for i, ref := range refs {
				qty := 1
				if i < len(quantities) {
					qty = quantities[i]
				}
				if ref == "manual" {
					items[i] = domain.ShoppingListItem{Entry: domain.ManualEntry{Name: "x"}, Quantity: qty}
					continue
				}
				items[i] = domain.ShoppingListItem{Entry: domain.CatalogEntry{ProductID: ref}, Quantity: qty}
				for _, p := range products {
					if p.ID != ref || len(p.Prices) == 0 {
						continue
					}
					cheapest := p.Prices[0].CurrentPrice
					for _, pr := range p.Prices {
						cheapest = decimal.Min(cheapest, pr.CurrentPrice)
					}
					expected = expected.Add(cheapest.Mul(decimal.NewFromInt(int64(qty))))
				}
			}
			return ComputeTotal(items, products).Equal(expected)
		},
		gen.SliceOf(gen.OneConstOf("p1", "p2", "p3", "p4", "p5", "empty", "gone", "manual")),
		gen.SliceOf(gen.IntRange(1, 50)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func newTestProducts() []domain.ProductWithPrices {
	products := repository.DefaultProducts()
	return append(products, domain.ProductWithPrices{Product: domain.Product{ID: "empty", Name: "Sem preço"}})
}
