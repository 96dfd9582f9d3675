package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/foodhub/internal/listing"
)

func TestSeed_IsDeterministic(t *testing.T) {
	now := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)

	a := Seed(now)
	b := Seed(now)

	assert.Equal(t, a, b)
	assert.Len(t, a.Restaurants, 12)
	assert.Len(t, a.Orders, 40)

	total := 0
	for _, c := range a.Customers {
		total += c.Orders
	}
	assert.Equal(t, len(a.Orders), total)
}

func TestOrdersFor(t *testing.T) {
	c := Seed(time.Now())

	orders := c.OrdersFor("REST001")
	require.NotEmpty(t, orders)
	for _, o := range orders {
		assert.Equal(t, "REST001", o.RestaurantID)
	}
	assert.Empty(t, c.OrdersFor("REST999"))
}

func TestRestaurantByPhone(t *testing.T) {
	c := Seed(time.Now())

	r, ok := c.RestaurantByPhone("+1 5550100005")
	require.True(t, ok)
	assert.Equal(t, "Sushi Zen", r.Name)

	_, ok = c.RestaurantByPhone("+1 0000000000")
	assert.False(t, ok)
}

func TestRestaurantList(t *testing.T) {
	c := Seed(time.Now())

	rows, page := RestaurantList.Apply(c.Restaurants, listing.Query{
		Search:  "indian",
		Filters: map[string]string{"status": "active"},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, "Spice Garden", rows[0].Name)
	assert.Equal(t, 1, page.Total)

	rows, _ = RestaurantList.Apply(c.Restaurants, listing.Query{
		Filters: map[string]string{"rating": "4.5.."},
	})
	for _, r := range rows {
		assert.GreaterOrEqual(t, r.Rating, 4.5)
	}
	assert.Len(t, rows, 3)
}

func TestOrderList_Paginates(t *testing.T) {
	c := Seed(time.Now())

	rows, page := OrderList.Apply(c.Orders, listing.Query{Page: 4, PageSize: 10})

	assert.Len(t, rows, 10)
	assert.Equal(t, 4, page.TotalPages)
	assert.False(t, page.HasNext)

	_, page = OrderList.Apply(c.Orders, listing.Query{Search: "ORD9999"})
	assert.True(t, page.NoData)
}

func TestPartnerAndCustomerLists(t *testing.T) {
	c := Seed(time.Now())

	partners, _ := PartnerList.Apply(c.Partners, listing.Query{
		Filters: map[string]string{"vehicle": "bike", "zone": "downtown"},
	})
	require.Len(t, partners, 1)
	assert.Equal(t, "DP001", partners[0].ID)

	customers, _ := CustomerList.Apply(c.Customers, listing.Query{
		Filters: map[string]string{"status": "blocked"},
	})
	assert.Len(t, customers, 2)

	customers, _ = CustomerList.Apply(c.Customers, listing.Query{Search: "JANE"})
	require.Len(t, customers, 1)
	assert.Equal(t, "CUST001", customers[0].ID)
}
