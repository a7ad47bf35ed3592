package service

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopcart-next/internal/constants"
	"github.com/shopcart-next/internal/models"
	"github.com/shopcart-next/internal/queue"
)

type fakeCatalog struct {
	items map[string]*models.CatalogItem
	calls map[string]int
	err   error
}

func newFakeCatalog(items ...models.CatalogItem) *fakeCatalog {
	c := &fakeCatalog{items: map[string]*models.CatalogItem{}, calls: map[string]int{}}
	for i := range items {
		item := items[i]
		c.items[item.ID] = &item
	}
	return c
}

func (c *fakeCatalog) FindByID(id string) (*models.CatalogItem, error) {
	c.calls[id]++
	if c.err != nil {
		return nil, c.err
	}
	item, ok := c.items[id]
	if !ok {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

type fakeCartStore struct {
	carts   map[string]models.Cart
	seq     int
	creates int
	updates int
	deletes int
	err     error
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: map[string]models.Cart{}}
}

func cloneCart(cart models.Cart) models.Cart {
	cart.Lines = append([]models.CartLineItem(nil), cart.Lines...)
	return cart
}

func (s *fakeCartStore) FindByID(id string) (*models.Cart, error) {
	if s.err != nil {
		return nil, s.err
	}
	cart, ok := s.carts[id]
	if !ok {
		return nil, nil
	}
	copied := cloneCart(cart)
	return &copied, nil
}

func (s *fakeCartStore) Create(cart *models.Cart) error {
	if s.err != nil {
		return s.err
	}
	s.creates++
	if cart.ID == "" {
		s.seq++
		cart.ID = "cart-" + strconv.Itoa(s.seq)
	}
	s.carts[cart.ID] = cloneCart(*cart)
	return nil
}

func (s *fakeCartStore) Update(cart *models.Cart) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.carts[cart.ID]; !ok {
		return errors.New("record not found")
	}
	s.updates++
	s.carts[cart.ID] = cloneCart(*cart)
	return nil
}

func (s *fakeCartStore) Delete(cart *models.Cart) error {
	if s.err != nil {
		return s.err
	}
	s.deletes++
	delete(s.carts, cart.ID)
	return nil
}

func (s *fakeCartStore) ListIdleBefore(before time.Time, limit int) ([]models.Cart, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := make([]models.Cart, 0)
	for _, cart := range s.carts {
		if cart.UpdatedAt.Before(before) && len(result) < limit {
			result = append(result, cloneCart(cart))
		}
	}
	return result, nil
}

type expireCall struct {
	cartID string
	delay  time.Duration
}

type fakeScheduler struct {
	calls []expireCall
	err   error
}

func (f *fakeScheduler) EnqueueCartExpire(payload queue.CartExpirePayload, delay time.Duration) error {
	f.calls = append(f.calls, expireCall{cartID: payload.CartID, delay: delay})
	return f.err
}

type cartFixture struct {
	svc       *CartService
	catalog   *fakeCatalog
	store     *fakeCartStore
	scheduler *fakeScheduler
	now       time.Time
}

func newCartFixture(t *testing.T, opts CartServiceOptions) *cartFixture {
	t.Helper()
	f := &cartFixture{
		catalog: newFakeCatalog(
			models.CatalogItem{ID: "apple", Name: "Apple", NamePlural: "Apples", UnitPrice: models.MustMoney("3.00"), Quantity: 5},
			models.CatalogItem{ID: "pear", Name: "Pear", NamePlural: "Pears", UnitPrice: models.MustMoney("1.25"), Quantity: 10},
			models.CatalogItem{ID: "plum", Name: "Plum", NamePlural: "Plums", UnitPrice: models.MustMoney("0.50"), Quantity: 0},
		),
		store:     newFakeCartStore(),
		scheduler: &fakeScheduler{},
		now:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	opts.Now = func() time.Time { return f.now }
	f.svc = NewCartService(f.store, f.catalog, f.scheduler, opts)
	return f
}

func (f *cartFixture) createCart(t *testing.T, lines ...CartLineRequest) *CartResult {
	t.Helper()
	result, err := f.svc.Create(lines)
	if err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	return result
}

func (f *cartFixture) storedCart(t *testing.T, id string) models.Cart {
	t.Helper()
	cart, ok := f.store.carts[id]
	if !ok {
		t.Fatalf("cart %s not stored", id)
	}
	return cart
}

func TestCartScenarioCreateIncreaseDecrease(t *testing.T) {
	f := newCartFixture(t, CartServiceOptions{})

	created := f.createCart(t, CartLineRequest{CatalogItemID: "apple", Quantity: 2})
	if created.Outcome != constants.CartOutcomeCreated {
		t.Fatalf("outcome want created got %s", created.Outcome)
	}
	if created.Cart.StatusMessage != "Cart created" {
		t.Fatalf("message want Cart created got %s", created.Cart.StatusMessage)
	}
	if len(created.Cart.Lines) != 1 || created.Cart.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected lines: %+v", created.Cart.Lines)
	}
	if created.Cart.Total.String() != "6.00" {
		t.Fatalf("total want 6.00 got %s", created.Cart.Total.String())
	}
	if created.Cart.Lines[0].DisplayName != "Apples" {
		t.Fatalf("plural name expected for quantity 2, got %s", created.Cart.Lines[0].DisplayName)
	}

	cartID := created.Cart.ID
	increased, err := f.svc.Increase(cartID, "apple", 10)
	if err != nil {
		t.Fatalf("increase failed: %v", err)
	}
	if increased.Cart.Lines[0].Quantity != 2 {
		t.Fatalf("quantity should stay 2, got %d", increased.Cart.Lines[0].Quantity)
	}
	if !strings.Contains(increased.Cart.StatusMessage, "out of stock, Max Qty: 5") {
		t.Fatalf("unexpected message: %s", increased.Cart.StatusMessage)
	}
	if increased.Outcome != constants.CartOutcomeStockExceeded || increased.Shortage == nil || increased.Shortage.MaxQuantity != 5 {
		t.Fatalf("expected stock exceeded outcome, got %s %+v", increased.Outcome, increased.Shortage)
	}

	decreased, err := f.svc.Decrease(cartID, "apple", 5)
	if err != nil {
		t.Fatalf("decrease failed: %v", err)
	}
	if len(decreased.Cart.Lines) != 1 || decreased.Cart.Lines[0].Quantity != 0 {
		t.Fatalf("quantity should clamp to 0 and keep line, got %+v", decreased.Cart.Lines)
	}
	if decreased.Cart.StatusMessage != "Item quantity updated" {
		t.Fatalf("unexpected message: %s", decreased.Cart.StatusMessage)
	}
	if decreased.Cart.Total.String() != "0.00" {
		t.Fatalf("total want 0.00 got %s", decreased.Cart.Total.String())
	}
	stored := f.storedCart(t, cartID)
	if len(stored.Lines) != 1 || stored.Lines[0].Quantity != 0 {
		t.Fatalf("stored line should be kept at 0, got %+v", stored.Lines)
	}
}

func TestCartCreateWithinStockMatchesRequest(t *testing.T) {
	f := newCartFixture(t, CartServiceOptions{})
	result := f.createCart(t,
		CartLineRequest{CatalogItemID: "pear", Quantity: 10},
		CartLineRequest{CatalogItemID: "apple", Quantity: 1},
		CartLineRequest{CatalogItemID: "plum", Quantity: 0},
	)
	stored := f.storedCart(t, result.Cart.ID)
	want := []struct {
		id  string
		qty int
	}{{"pear", 10}, {"apple", 1}, {"plum", 0}}
	if len(stored.Lines) != len(want) {
		t.Fatalf("line count want %d got %d", len(want), len(stored.Lines))
	}
	for i, w := range want {
		if stored.Lines[i].CatalogItemID != w.id || stored.Lines[i].Quantity != w.qty {
			t.Fatalf("line %d want %s x%d got %+v", i, w.id, w.qty, stored.Lines[i])
		}
	}
	if result.Cart.Lines[1].DisplayName != "Apple" {
		t.Fatalf("singular name expected for quantity 1, got %s", result.Cart.Lines[1].DisplayName)
	}
	if result.Cart.Total.String() != "15.50" {
		t.Fatalf("total want 15.50 got %s", result.Cart.Total.String())
	}
	if len(f.scheduler.calls) != 0 {
		t.Fatalf("expiry disabled, no schedule expected")
	}
}

func TestCartCreateOverStockPersistsEmptyCart(t *testing.T) {
	f := newCartFixture(t, CartServiceOptions{})
	result := f.createCart(t,
		CartLineRequest{CatalogItemID: "pear", Quantity: 1},
		CartLineRequest{CatalogItemID: "apple", Quantity: 6},
		CartLineRequest{CatalogItemID: "plum", Quantity: 3},
	)
	if result.Outcome != constants.CartOutcomeStockExceeded {
		t.Fatalf("outcome want stock_exceeded got %s", result.Outcome)
	}
	if result.Cart.StatusMessage != "Item: Apple is out of stock, Max Qty: 5" {
		t.Fatalf("message should name first offending item, got %s", result.Cart.StatusMessage)
	}
	if len(result.Cart.Lines) != 0 {
		t.Fatalf("over-stock create should drop all lines, got %+v", result.Cart.Lines)
	}
	stored := f.storedCart(t, result.Cart.ID)
	if len(stored.Lines) != 0 || stored.StatusMessage != result.Cart.StatusMessage {
		t.Fatalf("unexpected stored cart: %+v", stored)
	}
	if f.catalog.calls["plum"] != 0 {
		t.Fatalf("scan should stop at the first offending item")
	}
}

func TestCartCreateMissingCatalogItemAborts(t *testing.T) {
	f := newCartFixture(t, CartServiceOptions{})
	_, err := f.svc.Create([]CartLineRequest{
		{CatalogItemID: "apple", Quantity: 1},
		{CatalogItemID: "ghost", Quantity: 1},
	})
	if !errors.Is(err, ErrCatalogItemNotFound) {
		t.Fatalf("expected ErrCatalogItemNotFound, got %v", err)
	}
	if f.store.creates != 0 {
		t.Fatalf("nothing should be persisted")
	}
}

func TestCartCreateValidatesAndMergesLines(t *testing.T) {
	f := newCartFixture(t, CartServiceOptions{})
	if _, err := f.svc.Create([]CartLineRequest{{CatalogItemID: "apple", Quantity: -1}}); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("negative quantity should fail, got %v", err)
	}
	if _, err := f.svc.Create([]CartLineRequest{{CatalogItemID: " ", Quantity: 1}}); !errors.Is(err, ErrInvalidCartItem) {
		t.Fatalf("blank id should fail, got %v", err)
	}

	result := f.createCart(t,
		CartLineRequest{CatalogItemID: "pear", Quantity: 2},
		CartLineRequest{CatalogItemID: "apple", Quantity: 1},
		CartLineRequest{CatalogItemID: "pear", Quantity: 3},
	)
	if len(result.Cart.Lines) != 2 || result.Cart.Lines[0].CatalogItemID != "pear" || result.Cart.Lines[0].Quantity != 5 {
		t.Fatalf("duplicate items should merge into first position, got %+v", result.Cart.Lines)
	}
	if f.catalog.calls["pear"] != 1 {
		t.Fatalf("catalog should be consulted once per item per operation, got %d", f.catalog.calls["pear"])
	}
}

func TestCartCreateEmptyRequest(t *testing.T) {
	f := newCartFixture(t, CartServiceOptions{})
	result := f.createCart(t)
	if result.Outcome != constants.CartOutcomeCreated || len(result.Cart.Lines) != 0 {
		t.Fatalf("empty request should create empty cart, got %+v", result)
	}
	if result.Cart.Total.String() != "0.00" {
		t.Fatalf("empty cart total want 0.00 got %s", result.Cart.Total.String())
	}
}

func TestCartCreateSchedulesExpiry(t *testing.T) {
	f := newCartFixture(t, CartServiceOptions{ExpireAfter: 72 * time.Hour})
	f.scheduler.err = errors.New("redis down")
	result := f.createCart(t, CartLineRequest{CatalogItemID: "apple", Quantity: 1})
	if len(f.scheduler.calls) != 1 {
		t.Fatalf("expected one expiry schedule, got %d", len(f.scheduler.calls))
	}
	call := f.scheduler.calls[0]
	if call.cartID != result.Cart.ID || call.delay != 72*time.Hour {
		t.Fatalf("unexpected schedule: %+v", call)
	}
}

func TestCartUpdateReplacesLines(t *testing.T) {
	f := newCartFixture(t, CartServiceOptions{})
	created := f.createCart(t,
		CartLineRequest{CatalogItemID: "apple", Quantity: 2},
		CartLineRequest{CatalogItemID: "pear", Quantity: 1},
	)
	f.now = f.now.Add(time.Hour)

	result, err := f.svc.Update(created.Cart.ID, []CartLineRequest{{CatalogItemID: "plum", Quantity: 0}})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if result.Outcome != constants.CartOutcomeUpdated || result.Cart.StatusMessage != "Cart items." {
		t.Fatalf("unexpected outcome %s message %s", result.Outcome, result.Cart.StatusMessage)
	}
	stored := f.storedCart(t, created.Cart.ID)
	if len(stored.Lines) != 1 || stored.Lines[0].CatalogItemID != "plum" {
		t.Fatalf("update should replace, not merge: %+v", stored.Lines)
	}
	if !stored.UpdatedAt.Equal(f.now) {
		t.Fatalf("updatedAt want %s got %s", f.now, stored.UpdatedAt)
	}
	if !stored.CreatedAt.Equal(f.now.Add(-time.Hour)) {
		t.Fatalf("createdAt should not change, got %s", stored.CreatedAt)
	}
}

func TestCartUpdateOverStockKeepsExistingCart(t *testing.T) {
	f := newCartFixture(t, CartServiceOptions{})
	created := f.createCart(t, CartLineRequest{CatalogItemID: "apple", Quantity: 2})
	updatesBefore := f.store.updates

	result, err := f.svc.Update(created.Cart.ID, []CartLineRequest{{CatalogItemID: "pear", Quantity: 11}})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if result.Outcome != constants.CartOutcomeStockExceeded {
		t.Fatalf("outcome want stock_exceeded got %s", result.Outcome)
	}
	if result.Cart.StatusMessage != "Item: Pear is out of stock, Max Qty: 10" {
		t.Fatalf("unexpected message: %s", result.Cart.StatusMessage)
	}
	if len(result.Cart.Lines) != 1 || result.Cart.Lines[0].CatalogItemID != "apple" || result.Cart.Lines[0].Quantity != 2 {
		t.Fatalf("existing lines should be returned unchanged: %+v", result.Cart.Lines)
	}
	if f.store.updates != updatesBefore {
		t.Fatalf("over-stock update must not commit")
	}
	if stored := f.storedCart(t, created.Cart.ID); stored.StatusMessage != "Cart created" {
		t.Fatalf("stored message should be untouched, got %s", stored.StatusMessage)
	}
}

func TestCartOperationsOnMissingCart(t *testing.T) {
	f := newCartFixture(t, CartServiceOptions{})
	if _, err := f.svc.Get("nope"); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("get: expected ErrCartNotFound, got %v", err)
	}
	if _, err := f.svc.Update("nope", nil); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("update: expected ErrCartNotFound, got %v", err)
	}
	if _, err := f.svc.RemoveItem("nope", "apple"); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("removeItem: expected ErrCartNotFound, got %v", err)
	}
	if _, err := f.svc.Increase("nope", "apple", 1); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("increase: expected ErrCartNotFound, got %v", err)
	}
	if _, err := f.svc.Decrease("nope", "apple", 1); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("decrease: expected ErrCartNotFound, got %v", err)
	}
	if err := f.svc.Remove("nope"); err != nil {
		t.Fatalf("remove of missing cart should be silent, got %v", err)
	}
}

func TestCartItemOperationsOnMissingCatalogItem(t *testing.T) {
	f := newCartFixture(t, CartServiceOptions{})
	created := f.createCart(t)
	id := created.Cart.ID
	if _, err := f.svc.RemoveItem(id, "ghost"); !errors.Is(err, ErrCatalogItemNotFound) {
		t.Fatalf("removeItem: expected ErrCatalogItemNotFound, got %v", err)
	}
	if _, err := f.svc.Increase(id, "ghost", 1); !errors.Is(err, ErrCatalogItemNotFound) {
		t.Fatalf("increase: expected ErrCatalogItemNotFound, got %v", err)
	}
	if _, err := f.svc.Decrease(id, "ghost", 1); !errors.Is(err, ErrCatalogItemNotFound) {
		t.Fatalf("decrease: expected ErrCatalogItemNotFound, got %v", err)
	}
}

func TestCartRemove(t *testing.T) {
	f := newCartFixture(t, CartServiceOptions{})
	created := f.createCart(t, CartLineRequest{CatalogItemID: "apple", Quantity: 1})
	if err := f.svc.Remove(created.Cart.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, ok := f.store.carts[created.Cart.ID]; ok {
		t.Fatalf("cart should be deleted")
	}
	if err := f.svc.Remove(created.Cart.ID); err != nil {
		t.Fatalf("second remove should be silent, got %v", err)
	}
	if f.store.deletes != 1 {
		t.Fatalf("delete count want 1 got %d", f.store.deletes)
	}
}

func TestCartRemoveItemIsIdempotent(t *testing.T) {
	f := newCartFixture(t, CartServiceOptions{})
	created := f.createCart(t,
		CartLineRequest{CatalogItemID: "apple", Quantity: 1},
		CartLineRequest{CatalogItemID: "pear", Quantity: 2},
	)
	first, err := f.svc.RemoveItem(created.Cart.ID, "apple")
	if err != nil {
		t.Fatalf("first removeItem failed: %v", err)
	}
	second, err := f.svc.RemoveItem(created.Cart.ID, "apple")
	if err != nil {
		t.Fatalf("second removeItem failed: %v", err)
	}
	for i, result := range []*CartResult{first, second} {
		if result.Cart.StatusMessage != "Item removed from cart" || result.Outcome != constants.CartOutcomeItemRemoved {
			t.Fatalf("call %d unexpected message %s outcome %s", i, result.Cart.StatusMessage, result.Outcome)
		}
		if len(result.Cart.Lines) != 1 || result.Cart.Lines[0].CatalogItemID != "pear" {
			t.Fatalf("call %d unexpected lines %+v", i, result.Cart.Lines)
		}
	}
	if first.Cart.Total.String() != second.Cart.Total.String() {
		t.Fatalf("end state should match, totals %s vs %s", first.Cart.Total, second.Cart.Total)
	}
}

func TestCartIncreaseExistingLineWithinStock(t *testing.T) {
	f := newCartFixture(t, CartServiceOptions{})
	created := f.createCart(t, CartLineRequest{CatalogItemID: "apple", Quantity: 2})
	result, err := f.svc.Increase(created.Cart.ID, "apple", 3)
	if err != nil {
		t.Fatalf("increase failed: %v", err)
	}
	if result.Cart.Lines[0].Quantity != 5 || result.Outcome != constants.CartOutcomeQuantityUpdated {
		t.Fatalf("quantity want 5 got %d (%s)", result.Cart.Lines[0].Quantity, result.Outcome)
	}
	if result.Cart.StatusMessage != "Item quantity updated" {
		t.Fatalf("unexpected message: %s", result.Cart.StatusMessage)
	}
	if f.storedCart(t, created.Cart.ID).Lines[0].Quantity != 5 {
		t.Fatalf("increase should be committed")
	}
}

func TestCartIncreaseNewLineAlwaysAdded(t *testing.T) {
	cases := []struct {
		name    string
		delta   int
		outcome string
	}{
		{name: "within stock", delta: 4, outcome: constants.CartOutcomeQuantityUpdated},
		{name: "over stock", delta: 9, outcome: constants.CartOutcomeStockExceeded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newCartFixture(t, CartServiceOptions{})
			created := f.createCart(t)
			result, err := f.svc.Increase(created.Cart.ID, "apple", tc.delta)
			if err != nil {
				t.Fatalf("increase failed: %v", err)
			}
			if result.Outcome != tc.outcome {
				t.Fatalf("outcome want %s got %s", tc.outcome, result.Outcome)
			}
			stored := f.storedCart(t, created.Cart.ID)
			if len(stored.Lines) != 1 || stored.Lines[0].Quantity != tc.delta {
				t.Fatalf("new line with quantity %d expected, got %+v", tc.delta, stored.Lines)
			}
			if result.Cart.Lines[0].MaxQuantity != 5 {
				t.Fatalf("max quantity want 5 got %d", result.Cart.Lines[0].MaxQuantity)
			}
		})
	}
}

func TestCartIncreaseNewLineStrictStock(t *testing.T) {
	f := newCartFixture(t, CartServiceOptions{StrictStock: true})
	created := f.createCart(t)

	result, err := f.svc.Increase(created.Cart.ID, "apple", 9)
	if err != nil {
		t.Fatalf("increase failed: %v", err)
	}
	if result.Outcome != constants.CartOutcomeStockExceeded {
		t.Fatalf("outcome want stock_exceeded got %s", result.Outcome)
	}
	if len(f.storedCart(t, created.Cart.ID).Lines) != 0 {
		t.Fatalf("strict stock should not add over-limit line")
	}

	result, err = f.svc.Increase(created.Cart.ID, "apple", 5)
	if err != nil {
		t.Fatalf("increase failed: %v", err)
	}
	if result.Outcome != constants.CartOutcomeQuantityUpdated || len(result.Cart.Lines) != 1 {
		t.Fatalf("within-stock increase should add line, got %+v", result)
	}
}

func TestCartDecreaseWithoutLineIsNoop(t *testing.T) {
	f := newCartFixture(t, CartServiceOptions{})
	created := f.createCart(t, CartLineRequest{CatalogItemID: "pear", Quantity: 3})
	result, err := f.svc.Decrease(created.Cart.ID, "apple", 2)
	if err != nil {
		t.Fatalf("decrease failed: %v", err)
	}
	if result.Cart.StatusMessage != "Item quantity updated" {
		t.Fatalf("unexpected message: %s", result.Cart.StatusMessage)
	}
	if len(result.Cart.Lines) != 1 || result.Cart.Lines[0].Quantity != 3 {
		t.Fatalf("lines should be unchanged, got %+v", result.Cart.Lines)
	}

	partial, err := f.svc.Decrease(created.Cart.ID, "pear", 1)
	if err != nil {
		t.Fatalf("decrease failed: %v", err)
	}
	if partial.Cart.Lines[0].Quantity != 2 {
		t.Fatalf("quantity want 2 got %d", partial.Cart.Lines[0].Quantity)
	}
}

func TestCartDeltaValidation(t *testing.T) {
	f := newCartFixture(t, CartServiceOptions{})
	created := f.createCart(t)
	if _, err := f.svc.Increase(created.Cart.ID, "apple", -1); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("negative increase should fail, got %v", err)
	}
	if _, err := f.svc.Decrease(created.Cart.ID, "apple", -1); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("negative decrease should fail, got %v", err)
	}
}

func TestCartIncreaseHugeDeltaKeepsQuantityInRange(t *testing.T) {
	cases := []struct {
		name  string
		delta int
	}{
		{name: "max int", delta: math.MaxInt},
		{name: "max int minus stored", delta: math.MaxInt - 1},
		{name: "just over stock", delta: 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newCartFixture(t, CartServiceOptions{})
			created := f.createCart(t, CartLineRequest{CatalogItemID: "apple", Quantity: 2})

			result, err := f.svc.Increase(created.Cart.ID, "apple", tc.delta)
			if err != nil {
				t.Fatalf("increase failed: %v", err)
			}
			if result.Outcome != constants.CartOutcomeStockExceeded {
				t.Fatalf("outcome want stock_exceeded got %s", result.Outcome)
			}
			if !strings.Contains(result.Cart.StatusMessage, "out of stock, Max Qty: 5") {
				t.Fatalf("unexpected message: %s", result.Cart.StatusMessage)
			}
			if result.Cart.Lines[0].Quantity != 2 || result.Cart.Total.String() != "6.00" {
				t.Fatalf("line should be unchanged, got qty %d total %s", result.Cart.Lines[0].Quantity, result.Cart.Total)
			}
			if stored := f.storedCart(t, created.Cart.ID); stored.Lines[0].Quantity != 2 {
				t.Fatalf("stored quantity want 2 got %d", stored.Lines[0].Quantity)
			}
		})
	}
}

func TestCartDuplicateLineSumOverflowRejected(t *testing.T) {
	huge := []CartLineRequest{
		{CatalogItemID: "apple", Quantity: math.MaxInt},
		{CatalogItemID: "apple", Quantity: 2},
	}
	cases := []struct {
		name string
		run  func(f *cartFixture, cartID string) error
	}{
		{name: "create", run: func(f *cartFixture, _ string) error {
			_, err := f.svc.Create(huge)
			return err
		}},
		{name: "update", run: func(f *cartFixture, cartID string) error {
			_, err := f.svc.Update(cartID, huge)
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newCartFixture(t, CartServiceOptions{})
			created := f.createCart(t, CartLineRequest{CatalogItemID: "pear", Quantity: 1})
			creates, updates := f.store.creates, f.store.updates

			if err := tc.run(f, created.Cart.ID); !errors.Is(err, ErrInvalidQuantity) {
				t.Fatalf("overflowing quantity should fail with ErrInvalidQuantity, got %v", err)
			}
			if f.store.creates != creates || f.store.updates != updates {
				t.Fatalf("nothing should be committed")
			}
			for id, cart := range f.store.carts {
				for _, line := range cart.Lines {
					if line.Quantity < 0 {
						t.Fatalf("cart %s stored negative quantity %d", id, line.Quantity)
					}
				}
			}
		})
	}

	f := newCartFixture(t, CartServiceOptions{})
	result, err := f.svc.Create([]CartLineRequest{
		{CatalogItemID: "pear", Quantity: math.MaxInt - 1},
		{CatalogItemID: "pear", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("sum equal to max int should not overflow, got %v", err)
	}
	if result.Outcome != constants.CartOutcomeStockExceeded || len(f.storedCart(t, result.Cart.ID).Lines) != 0 {
		t.Fatalf("over-stock sum should persist an empty cart, got %+v", result)
	}
}

func TestCartRemoveItemTrimsItemID(t *testing.T) {
	f := newCartFixture(t, CartServiceOptions{})
	created := f.createCart(t,
		CartLineRequest{CatalogItemID: "apple", Quantity: 1},
		CartLineRequest{CatalogItemID: "pear", Quantity: 1},
	)
	if _, err := f.svc.RemoveItem(created.Cart.ID, "  apple "); err != nil {
		t.Fatalf("removeItem failed: %v", err)
	}
	stored := f.storedCart(t, created.Cart.ID)
	if len(stored.Lines) != 1 || stored.Lines[0].CatalogItemID != "pear" {
		t.Fatalf("padded item id should remove the apple line, got %+v", stored.Lines)
	}
}

func TestCartEnrichIdempotentAndReflectsCatalog(t *testing.T) {
	f := newCartFixture(t, CartServiceOptions{})
	created := f.createCart(t, CartLineRequest{CatalogItemID: "apple", Quantity: 2})
	stored := f.storedCart(t, created.Cart.ID)

	first, err := f.svc.Enrich(&stored)
	if err != nil {
		t.Fatalf("enrich failed: %v", err)
	}
	second, err := f.svc.Enrich(&stored)
	if err != nil {
		t.Fatalf("enrich failed: %v", err)
	}
	a, b := first.Lines[0], second.Lines[0]
	if a.DisplayName != b.DisplayName || a.UnitPrice.String() != b.UnitPrice.String() ||
		a.MaxQuantity != b.MaxQuantity || a.SubTotal.String() != b.SubTotal.String() ||
		first.Total.String() != second.Total.String() {
		t.Fatalf("enrichment should be idempotent: %+v vs %+v", a, b)
	}

	f.catalog.items["apple"].UnitPrice = models.MustMoney("4.00")
	f.catalog.items["apple"].Quantity = 7
	updatesBefore := f.store.updates
	third, err := f.svc.Get(created.Cart.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if third.Lines[0].UnitPrice.String() != "4.00" || third.Lines[0].MaxQuantity != 7 {
		t.Fatalf("enrichment should reflect catalog change, got %+v", third.Lines[0])
	}
	if third.Total.String() != "8.00" {
		t.Fatalf("total want 8.00 got %s", third.Total.String())
	}
	if f.store.updates != updatesBefore {
		t.Fatalf("enrichment must not persist anything")
	}
}

func TestCartEnrichFailsWhenCatalogItemDisappears(t *testing.T) {
	f := newCartFixture(t, CartServiceOptions{})
	created := f.createCart(t, CartLineRequest{CatalogItemID: "apple", Quantity: 1})
	delete(f.catalog.items, "apple")
	if _, err := f.svc.Get(created.Cart.ID); !errors.Is(err, ErrCatalogItemNotFound) {
		t.Fatalf("expected ErrCatalogItemNotFound, got %v", err)
	}
}

func TestCartStorageErrorsAreWrapped(t *testing.T) {
	f := newCartFixture(t, CartServiceOptions{})
	f.store.err = errors.New("disk full")
	if _, err := f.svc.Create(nil); !errors.Is(err, ErrCartSaveFailed) {
		t.Fatalf("expected ErrCartSaveFailed, got %v", err)
	}
	if _, err := f.svc.Get("any"); !errors.Is(err, ErrCartFetchFailed) {
		t.Fatalf("expected ErrCartFetchFailed, got %v", err)
	}

	f.store.err = nil
	f.catalog.err = errors.New("catalog down")
	if _, err := f.svc.Create([]CartLineRequest{{CatalogItemID: "apple", Quantity: 1}}); !errors.Is(err, ErrCatalogFetchFailed) {
		t.Fatalf("expected ErrCatalogFetchFailed, got %v", err)
	}
}

func TestCartExpireIfIdle(t *testing.T) {
	f := newCartFixture(t, CartServiceOptions{})
	created := f.createCart(t)
	ttl := 24 * time.Hour

	f.now = f.now.Add(10 * time.Hour)
	removed, err := f.svc.ExpireIfIdle(created.Cart.ID, ttl)
	if err != nil {
		t.Fatalf("expire check failed: %v", err)
	}
	if removed {
		t.Fatalf("cart should not expire before ttl")
	}
	if len(f.scheduler.calls) != 1 || f.scheduler.calls[0].delay != 14*time.Hour {
		t.Fatalf("expected reschedule for remaining 14h, got %+v", f.scheduler.calls)
	}

	f.now = f.now.Add(14 * time.Hour)
	removed, err = f.svc.ExpireIfIdle(created.Cart.ID, ttl)
	if err != nil {
		t.Fatalf("expire check failed: %v", err)
	}
	if !removed {
		t.Fatalf("cart should expire at ttl")
	}
	if _, ok := f.store.carts[created.Cart.ID]; ok {
		t.Fatalf("expired cart should be deleted")
	}

	removed, err = f.svc.ExpireIfIdle(created.Cart.ID, ttl)
	if err != nil || removed {
		t.Fatalf("missing cart should be a no-op, removed=%v err=%v", removed, err)
	}
}

func TestCartSweepIdle(t *testing.T) {
	f := newCartFixture(t, CartServiceOptions{})
	stale := f.createCart(t)
	f.now = f.now.Add(30 * time.Hour)
	fresh := f.createCart(t)

	removed, err := f.svc.SweepIdle(24*time.Hour, 10)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed want 1 got %d", removed)
	}
	if _, ok := f.store.carts[stale.Cart.ID]; ok {
		t.Fatalf("stale cart should be removed")
	}
	if _, ok := f.store.carts[fresh.Cart.ID]; !ok {
		t.Fatalf("fresh cart should be kept")
	}
}
