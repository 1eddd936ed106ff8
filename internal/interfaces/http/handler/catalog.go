package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/lateleria/storefront/internal/application/catalog"
)

// StorefrontHandler serves the public catalog
type StorefrontHandler struct {
	BaseHandler
	storefront *catalogapp.StorefrontService
}

// NewStorefrontHandler creates a new StorefrontHandler
func NewStorefrontHandler(storefront *catalogapp.StorefrontService) *StorefrontHandler {
	return &StorefrontHandler{storefront: storefront}
}

// ListProducts godoc
// @Summary      List products
// @Description  Active products, newest first, with their category and first image
// @Tags         catalog
// @Produce      json
// @Param        category query string false "Category slug"
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse}
// @Router       /productos [get]
func (h *StorefrontHandler) ListProducts(c *gin.Context) {
	products, err := h.storefront.ListProducts(c.Request.Context(), strings.TrimSpace(c.Query("category")))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// GetProduct godoc
// @Summary      Get product
// @Description  One active product with all images and variants
// @Tags         catalog
// @Produce      json
// @Param        slug path string true "Product slug"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /productos/{slug} [get]
func (h *StorefrontHandler) GetProduct(c *gin.Context) {
	product, err := h.storefront.GetProduct(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ListCategories godoc
// @Summary      List categories
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalogapp.CategoryResponse}
// @Router       /categorias [get]
func (h *StorefrontHandler) ListCategories(c *gin.Context) {
	categories, err := h.storefront.ListCategories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// ProductAdminHandler handles product administration
type ProductAdminHandler struct {
	BaseHandler
	products *catalogapp.ProductService
}

// NewProductAdminHandler creates a new ProductAdminHandler
func NewProductAdminHandler(products *catalogapp.ProductService) *ProductAdminHandler {
	return &ProductAdminHandler{products: products}
}

// List godoc
// @Summary      List products (admin)
// @Description  Every product, newest first, filtered by category and name
// @Tags         admin-products
// @Produce      json
// @Param        categoryId query string false "Category ID"
// @Param        search query string false "Search on name"
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse}
// @Security     BearerAuth
// @Router       /admin/productos [get]
func (h *ProductAdminHandler) List(c *gin.Context) {
	filter := catalogapp.AdminProductFilter{Search: strings.TrimSpace(c.Query("search"))}
	if raw := c.Query("categoryId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Categoría no válida")
			return
		}
		filter.CategoryID = &id
	}

	products, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// Get godoc
// @Summary      Get product (admin)
// @Tags         admin-products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/productos/{id} [get]
func (h *ProductAdminHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create godoc
// @Summary      Create product
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.ProductInput true "Product"
// @Success      201 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/productos [post]
func (h *ProductAdminHandler) Create(c *gin.Context) {
	var req catalogapp.ProductInput
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.products.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
// @Summary      Update product
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.ProductInput true "Product"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/productos/{id} [put]
func (h *ProductAdminHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ProductInput
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.products.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
// @Summary      Delete product
// @Tags         admin-products
// @Param        id path string true "Product ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/productos/{id} [delete]
func (h *ProductAdminHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddImage godoc
// @Summary      Add product image
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.AddImageRequest true "Image"
// @Success      201 {object} dto.Response{data=catalogapp.ProductImageResponse}
// @Security     BearerAuth
// @Router       /admin/productos/{id}/imagenes [post]
func (h *ProductAdminHandler) AddImage(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.AddImageRequest
	if !h.BindJSON(c, &req) {
		return
	}
	image, err := h.products.AddImage(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, image)
}

// RemoveImage godoc
// @Summary      Remove product image
// @Tags         admin-products
// @Param        id path string true "Product ID" format(uuid)
// @Param        imageId path string true "Image ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /admin/productos/{id}/imagenes/{imageId} [delete]
func (h *ProductAdminHandler) RemoveImage(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	imageID, ok := h.parseUUIDParam(c, "imageId")
	if !ok {
		return
	}
	if err := h.products.RemoveImage(c.Request.Context(), id, imageID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CreateUploadURL godoc
// @Summary      Presigned image upload URL
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.UploadURLRequest true "File"
// @Success      200 {object} dto.Response{data=catalogapp.UploadURLResponse}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/productos/{id}/imagenes/upload-url [post]
func (h *ProductAdminHandler) CreateUploadURL(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UploadURLRequest
	if !h.BindJSON(c, &req) {
		return
	}
	upload, err := h.products.CreateUploadURL(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, upload)
}

// ReplaceVariants godoc
// @Summary      Replace product variants
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.ReplaceVariantsRequest true "Variants"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Security     BearerAuth
// @Router       /admin/productos/{id}/variantes [put]
func (h *ProductAdminHandler) ReplaceVariants(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ReplaceVariantsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.products.ReplaceVariants(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Stats godoc
// @Summary      Catalog stats
// @Tags         admin
// @Produce      json
// @Success      200 {object} dto.Response{data=catalogapp.StatsResponse}
// @Security     BearerAuth
// @Router       /admin/stats [get]
func (h *ProductAdminHandler) Stats(c *gin.Context) {
	stats, err := h.products.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// CategoryAdminHandler handles category administration
type CategoryAdminHandler struct {
	BaseHandler
	categories *catalogapp.CategoryService
}

// NewCategoryAdminHandler creates a new CategoryAdminHandler
func NewCategoryAdminHandler(categories *catalogapp.CategoryService) *CategoryAdminHandler {
	return &CategoryAdminHandler{categories: categories}
}

// List godoc
// @Summary      List categories (admin)
// @Tags         admin-categories
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalogapp.CategoryResponse}
// @Security     BearerAuth
// @Router       /admin/categorias [get]
func (h *CategoryAdminHandler) List(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// Create godoc
// @Summary      Create category
// @Tags         admin-categories
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateCategoryRequest true "Category"
// @Success      201 {object} dto.Response{data=catalogapp.CategoryResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/categorias [post]
func (h *CategoryAdminHandler) Create(c *gin.Context) {
	var req catalogapp.CreateCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	category, err := h.categories.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// Seed godoc
// @Summary      Seed default categories
// @Description  Creates the default categories that are missing and reports each outcome
// @Tags         admin-categories
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalogapp.SeedResult}
// @Security     BearerAuth
// @Router       /admin/categorias/seed [post]
func (h *CategoryAdminHandler) Seed(c *gin.Context) {
	h.Success(c, h.categories.SeedDefaults(c.Request.Context()))
}
