package services

import (
	"testing"
	"time"

	"lostfound/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newProducts(t *testing.T) (*ProductService, *models.Category) {
	t.Helper()

	db := newTestDB(t)
	svc := NewProductService(db, newTestConfig())
	category := seedCategory(t, db, "Electronics")
	return svc, category
}

func validRequest(category *models.Category) *ProductRequest {
	return &ProductRequest{
		Name:       ptr("Black wallet"),
		Type:       ptr(models.TypeLost),
		Status:     ptr(models.StatusActive),
		Latitude:   ptr(52.52),
		Longitude:  ptr(13.405),
		CategoryID: &category.ID,
	}
}

func TestAddProduct(t *testing.T) {
	svc, category := newProducts(t)

	resp, err := svc.AddProduct(validRequest(category), principalFor("owner@example.com", "Owner"))
	require.NoError(t, err)

	assert.Equal(t, "Black wallet", resp.Name)
	assert.Equal(t, models.TypeLost, resp.Type)
	assert.Equal(t, models.StatusActive, resp.Status)
	assert.Equal(t, category.ID, resp.Category.ID)
	assert.Equal(t, "owner@example.com", resp.Reporter.Email, "the listing belongs to the principal")
	assert.Equal(t, 0, resp.ReportedCounts)
}

func TestAddProductValidation(t *testing.T) {
	svc, category := newProducts(t)
	principal := principalFor("owner@example.com", "")

	cases := map[string]*ProductRequest{
		"nil request":  nil,
		"blank name":   {Name: ptr("  "), Type: ptr(models.TypeLost), Status: ptr(models.StatusActive), Latitude: ptr(1.0), Longitude: ptr(1.0), CategoryID: &category.ID},
		"missing type": {Name: ptr("x"), Status: ptr(models.StatusActive), Latitude: ptr(1.0), Longitude: ptr(1.0), CategoryID: &category.ID},
		"missing coordinates": {Name: ptr("x"), Type: ptr(models.TypeLost), Status: ptr(models.StatusActive), CategoryID: &category.ID},
		"missing category":    {Name: ptr("x"), Type: ptr(models.TypeLost), Status: ptr(models.StatusActive), Latitude: ptr(1.0), Longitude: ptr(1.0)},
		"reported status":     {Name: ptr("x"), Type: ptr(models.TypeLost), Status: ptr(models.StatusReported), Latitude: ptr(1.0), Longitude: ptr(1.0), CategoryID: &category.ID},
	}

	for name, req := range cases {
		_, err := svc.AddProduct(req, principal)
		assert.ErrorIs(t, err, ErrInvalidInput, name)
	}
}

func TestAddProductUnknownCategory(t *testing.T) {
	svc, category := newProducts(t)

	req := validRequest(category)
	req.CategoryID = ptr(uint(9999))
	_, err := svc.AddProduct(req, principalFor("owner@example.com", ""))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddProductResolvesCategoryByName(t *testing.T) {
	svc, category := newProducts(t)

	req := validRequest(category)
	req.CategoryID = nil
	req.CategoryName = ptr("electronics")
	resp, err := svc.AddProduct(req, principalFor("owner@example.com", ""))
	require.NoError(t, err)
	assert.Equal(t, category.ID, resp.Category.ID, "category names match case-insensitively")
}

func TestUpdateProductPartial(t *testing.T) {
	svc, category := newProducts(t)

	created, err := svc.AddProduct(validRequest(category), principalFor("owner@example.com", ""))
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(created.ID, &ProductRequest{Name: ptr("Brown wallet")}, principalFor("owner@example.com", ""))
	require.NoError(t, err)

	assert.Equal(t, "Brown wallet", updated.Name)
	assert.Equal(t, created.Type, updated.Type, "fields absent from the request stay untouched")
	assert.Equal(t, created.Latitude, updated.Latitude)
	assert.Equal(t, created.Category.ID, updated.Category.ID)
}

func TestUpdateProductNonOwner(t *testing.T) {
	svc, category := newProducts(t)

	created, err := svc.AddProduct(validRequest(category), principalFor("owner@example.com", ""))
	require.NoError(t, err)

	_, err = svc.UpdateProduct(created.ID, &ProductRequest{Name: ptr("Stolen")}, principalFor("intruder@example.com", ""))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateProductTerminalItem(t *testing.T) {
	svc, category := newProducts(t)

	created, err := svc.AddProduct(validRequest(category), principalFor("owner@example.com", ""))
	require.NoError(t, err)
	require.NoError(t, svc.DB.Model(&models.Item{}).
		Where("id = ?", created.ID).
		Update("status", models.StatusReported).Error)

	_, err = svc.UpdateProduct(created.ID, &ProductRequest{Name: ptr("Too late")}, principalFor("owner@example.com", ""))
	assert.ErrorIs(t, err, ErrNotFound, "a moderated item rejects further edits")
}

func TestGetProductByIDHidesNonActive(t *testing.T) {
	svc, category := newProducts(t)

	created, err := svc.AddProduct(validRequest(category), principalFor("owner@example.com", ""))
	require.NoError(t, err)

	got, err := svc.GetProductByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	require.NoError(t, svc.DB.Model(&models.Item{}).
		Where("id = ?", created.ID).
		Update("status", models.StatusReported).Error)
	_, err = svc.GetProductByID(created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportItemMirrorsCountAndFlipsStatus(t *testing.T) {
	svc, category := newProducts(t)

	created, err := svc.AddProduct(validRequest(category), principalFor("owner@example.com", ""))
	require.NoError(t, err)

	for i, reporter := range []string{"r1@example.com", "r2@example.com"} {
		count, err := svc.ReportItem(created.ID, "fake listing", principalFor(reporter, ""))
		require.NoError(t, err)
		assert.EqualValues(t, i+1, count)

		var item models.Item
		require.NoError(t, svc.DB.First(&item, created.ID).Error)
		assert.Equal(t, i+1, item.ReportedCounts, "the count is mirrored on every report")
		assert.Equal(t, models.StatusActive, item.Status)
	}

	count, err := svc.ReportItem(created.ID, "", principalFor("r3@example.com", ""))
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	var item models.Item
	require.NoError(t, svc.DB.First(&item, created.ID).Error)
	assert.Equal(t, models.StatusReported, item.Status)
	assert.Equal(t, 3, item.ReportedCounts)

	// Terminal: the next report sees no item at all.
	_, err = svc.ReportItem(created.ID, "late", principalFor("r4@example.com", ""))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportItemDuplicateReporter(t *testing.T) {
	svc, category := newProducts(t)

	created, err := svc.AddProduct(validRequest(category), principalFor("owner@example.com", ""))
	require.NoError(t, err)

	_, err = svc.ReportItem(created.ID, "fake", principalFor("r1@example.com", ""))
	require.NoError(t, err)
	_, err = svc.ReportItem(created.ID, "fake again", principalFor("r1@example.com", ""))
	assert.ErrorIs(t, err, ErrConflict)

	var item models.Item
	require.NoError(t, svc.DB.First(&item, created.ID).Error)
	assert.Equal(t, 1, item.ReportedCounts, "the duplicate must not bump the mirror")
}

func TestDeleteProduct(t *testing.T) {
	svc, category := newProducts(t)
	discussion := NewDiscussionService(svc.DB, svc.Cfg)

	created, err := svc.AddProduct(validRequest(category), principalFor("owner@example.com", ""))
	require.NoError(t, err)

	node, err := discussion.AddComment(created.ID, "is this still around?", nil, principalFor("c1@example.com", ""))
	require.NoError(t, err)
	_, err = discussion.ReportComment(created.ID, node.ID, "spam", principalFor("r1@example.com", ""))
	require.NoError(t, err)
	_, err = svc.ReportItem(created.ID, "fake", principalFor("r2@example.com", ""))
	require.NoError(t, err)

	_, err = svc.DeleteProduct(created.ID, principalFor("intruder@example.com", ""))
	assert.ErrorIs(t, err, ErrForbidden)

	deleted, err := svc.DeleteProduct(created.ID, principalFor("owner@example.com", ""))
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	var items, comments, commentReports, itemReports int64
	require.NoError(t, svc.DB.Model(&models.Item{}).Count(&items).Error)
	require.NoError(t, svc.DB.Model(&models.Comment{}).Count(&comments).Error)
	require.NoError(t, svc.DB.Model(&models.CommentReport{}).Count(&commentReports).Error)
	require.NoError(t, svc.DB.Model(&models.ItemReport{}).Count(&itemReports).Error)
	assert.Zero(t, items)
	assert.Zero(t, comments)
	assert.Zero(t, commentReports)
	assert.Zero(t, itemReports)
}

func TestFindAllProductsPagesActiveOnly(t *testing.T) {
	svc, category := newProducts(t)
	principal := principalFor("owner@example.com", "")

	for i := 0; i < 3; i++ {
		_, err := svc.AddProduct(validRequest(category), principal)
		require.NoError(t, err)
	}
	hidden, err := svc.AddProduct(validRequest(category), principal)
	require.NoError(t, err)
	require.NoError(t, svc.DB.Model(&models.Item{}).
		Where("id = ?", hidden.ID).
		Update("status", models.StatusReported).Error)

	page, err := svc.FindAllProducts(0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasNext)
	require.Len(t, page.Items, 2)
}

func TestSearchByLocation(t *testing.T) {
	svc, category := newProducts(t)
	principal := principalFor("owner@example.com", "")

	near := validRequest(category)
	near.Name = ptr("Red backpack")
	near.Latitude = ptr(52.520)
	near.Longitude = ptr(13.405)
	_, err := svc.AddProduct(near, principal)
	require.NoError(t, err)

	far := validRequest(category)
	far.Name = ptr("Red bicycle")
	far.Latitude = ptr(48.137)
	far.Longitude = ptr(11.575)
	_, err = svc.AddProduct(far, principal)
	require.NoError(t, err)

	page, err := svc.SearchByLocation(LocationQuery{
		Latitude:  ptr(52.52),
		Longitude: ptr(13.40),
		RadiusKm:  ptr(5.0),
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Red backpack", page.Items[0].Name)

	page, err = svc.SearchByLocation(LocationQuery{Name: "red"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2, "name matching is case-insensitive")
}

func TestSearchByLocationValidation(t *testing.T) {
	svc, _ := newProducts(t)

	_, err := svc.SearchByLocation(LocationQuery{Latitude: ptr(52.52)})
	assert.ErrorIs(t, err, ErrInvalidInput, "partial location arguments are rejected")

	_, err = svc.SearchByLocation(LocationQuery{Latitude: ptr(52.52), Longitude: ptr(13.4), RadiusKm: ptr(0.0)})
	assert.ErrorIs(t, err, ErrInvalidInput, "radius must be positive")
}

func TestGetItemCounts(t *testing.T) {
	svc, category := newProducts(t)
	principal := principalFor("owner@example.com", "")

	_, err := svc.AddProduct(validRequest(category), principal)
	require.NoError(t, err)
	delivered := validRequest(category)
	delivered.Status = ptr(models.StatusDelivered)
	_, err = svc.AddProduct(delivered, principal)
	require.NoError(t, err)

	counts, err := svc.GetItemCounts(time.UTC)
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts.AllReported)
	assert.EqualValues(t, 2, counts.TodayReported)
	assert.EqualValues(t, 1, counts.Returned)
}

func TestGetUserItemCounts(t *testing.T) {
	svc, category := newProducts(t)
	principal := principalFor("owner@example.com", "")

	lost := validRequest(category)
	_, err := svc.AddProduct(lost, principal)
	require.NoError(t, err)

	found := validRequest(category)
	found.Type = ptr(models.TypeFound)
	_, err = svc.AddProduct(found, principal)
	require.NoError(t, err)

	// Another user's listings stay out of the caller's counts.
	_, err = svc.AddProduct(validRequest(category), principalFor("someone@example.com", ""))
	require.NoError(t, err)

	counts, err := svc.GetUserItemCounts(principal)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts.LostReported)
	assert.EqualValues(t, 1, counts.FoundReported)
}

func TestGetAllCategories(t *testing.T) {
	svc, category := newProducts(t)
	second := seedCategory(t, svc.DB, "Keys")

	categories, err := svc.GetAllCategories()
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, category.ID, categories[0].ID)
	assert.Equal(t, second.ID, categories[1].ID)
}
