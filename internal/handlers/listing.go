package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/foodhub/internal/catalog"
	"github.com/example/foodhub/internal/listing"
	"github.com/example/foodhub/internal/middleware"
	"github.com/example/foodhub/internal/utils"
)

// ListHandler serves the list screens over the mock catalog.
type ListHandler struct {
	catalog *catalog.Catalog
}

func NewListHandler(c *catalog.Catalog) *ListHandler {
	return &ListHandler{catalog: c}
}

func (h *ListHandler) Restaurants(c *fiber.Ctx) error {
	return respondList(c, h.catalog.Restaurants, catalog.RestaurantList)
}

func (h *ListHandler) Orders(c *fiber.Ctx) error {
	return respondList(c, h.catalog.Orders, catalog.OrderList)
}

func (h *ListHandler) Partners(c *fiber.Ctx) error {
	return respondList(c, h.catalog.Partners, catalog.PartnerList)
}

func (h *ListHandler) Customers(c *fiber.Ctx) error {
	return respondList(c, h.catalog.Customers, catalog.CustomerList)
}

// RestaurantOrders lists the orders of the restaurant registered under the
// signed-in partner's phone number.
func (h *ListHandler) RestaurantOrders(c *fiber.Ctx) error {
	session, ok := middleware.GetCurrentSession(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	rows := []catalog.Order{}
	if r, found := h.catalog.RestaurantByPhone(session.Contact); found {
		rows = h.catalog.OrdersFor(r.ID)
	}
	return respondList(c, rows, catalog.OrderList)
}

// respondList reads search, filter keys, page and limit from the query
// string and renders one page.
func respondList[T any](c *fiber.Ctx, rows []T, def listing.Definition[T]) error {
	pg := utils.ParsePagination(c)

	filters := make(map[string]string)
	for _, key := range def.FilterKeys() {
		if v := c.Query(key); v != "" {
			filters[key] = v
		}
	}
	if err := def.Check(filters); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	page, meta := def.Apply(rows, listing.Query{
		Search:   c.Query("search"),
		Filters:  filters,
		Page:     pg.Page,
		PageSize: pg.Limit,
	})
	return c.JSON(fiber.Map{
		"success":    true,
		"data":       page,
		"pagination": meta,
	})
}
