package handlers

import (
	"net/http"

	"eventhub/internal/models"

	"github.com/gin-gonic/gin"
)

// ListCategories - GET /api/v1/categories
func (h *Handlers) ListCategories(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "list categories")
		return
	}

	c.JSON(http.StatusOK, models.ListCategoriesResponse{Success: true, Categories: categories})
}

// GetCategory - GET /api/v1/categories/:id
func (h *Handlers) GetCategory(c *gin.Context) {
	category, err := h.categories.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "get category")
		return
	}

	c.JSON(http.StatusOK, models.CategoryResponse{Success: true, Category: category})
}

// CreateCategory - POST /api/v1/categories
func (h *Handlers) CreateCategory(c *gin.Context) {
	var req models.CategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := h.categories.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "create category")
		return
	}

	c.JSON(http.StatusCreated, models.CategoryResponse{Success: true, Category: category})
}

// UpdateCategory - PUT /api/v1/categories/:id
func (h *Handlers) UpdateCategory(c *gin.Context) {
	var req models.CategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := h.categories.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "update category")
		return
	}

	c.JSON(http.StatusOK, models.CategoryResponse{Success: true, Category: category})
}

// DeleteCategory - DELETE /api/v1/categories/:id
// События удаленной категории остаются в каталоге
func (h *Handlers) DeleteCategory(c *gin.Context) {
	if err := h.categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "delete category")
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Success: true, Message: "Category deleted"})
}
