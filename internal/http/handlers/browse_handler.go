package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"chatstore/internal/catalog"
	applog "chatstore/internal/log"
	"chatstore/internal/repos"
	"chatstore/internal/validate"
)

type BrowseHandler struct {
	Catalog *catalog.Service
}

func (h *BrowseHandler) Home(c *fiber.Ctx) error {
	return c.Redirect("/browse")
}

func (h *BrowseHandler) Browse(c *fiber.Ctx) error {
	f := repos.BrowseFilter{InStockOnly: true, Limit: 20}

	if q, ok := validate.Q(c.Query("q")); ok {
		f.Search = q
	}
	if cat, ok := validate.Q(c.Query("category")); ok {
		f.Category = cat
	}
	if v, err := strconv.ParseFloat(c.Query("min_price"), 64); err == nil && v > 0 {
		f.MinPrice = v
	}
	if v, err := strconv.ParseFloat(c.Query("max_price"), 64); err == nil && v > 0 {
		f.MaxPrice = v
	}
	if v, err := strconv.ParseFloat(c.Query("min_rating"), 64); err == nil && v > 0 {
		f.MinRating = v
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 1 {
		f.Offset = (page - 1) * f.Limit
	}

	products, err := h.Catalog.Browse(f)
	if err != nil {
		applog.Error(c, "browse.list", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
			"Message": "Could not load products. Please try again.",
		})
	}
	categories, err := h.Catalog.Categories()
	if err != nil {
		applog.Error(c, "browse.categories", err, nil)
		categories = nil
	}

	return render(c, "browse", fiber.Map{
		"Products":   products,
		"Categories": categories,
		"Filter":     f,
	})
}
