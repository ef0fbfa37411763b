package repository

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/shoppyglobe/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
)

func setupTestDB(t *testing.T) (*mongo.Database, func()) {
	if testing.Short() {
		t.Skip("skipping MongoDB container test in short mode")
	}
	ctx := context.Background()

	// Start MongoDB container
	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	testcontainers.CleanupContainer(t, mongoContainer)
	require.NoError(t, err)

	// Get connection string
	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	// Connect to MongoDB
	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	require.NoError(t, RunMigrations(db))

	cleanup := func() {
		_ = db.Client().Disconnect(ctx)
	}

	return db, cleanup
}

func fakeProduct(stock int) *domain.Product {
	return &domain.Product{
		Title:       gofakeit.ProductName(),
		Description: gofakeit.ProductDescription(),
		Price:       decimal.NewFromFloat(gofakeit.Price(1, 100)).Round(2),
		Stock:       stock,
		Brand:       gofakeit.Company(),
		Category:    "electronics",
		Thumbnail:   gofakeit.URL(),
	}
}

func TestFindByOwner_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewMongoRepository(db)

	cart, err := repo.FindByOwner(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
	assert.Nil(t, cart)
}

func TestSave_CreatesAndReplaces(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewMongoRepository(db)
	ctx := context.Background()
	ownerID := gofakeit.UUID()

	cart := domain.NewCart(ownerID, time.Now().UTC())
	cart.Items = append(cart.Items, domain.CartItem{
		ID:        gofakeit.UUID(),
		ProductID: "p1",
		Title:     "Phone",
		Price:     decimal.RequireFromString("10.50"),
		Quantity:  2,
	})
	cart.Recalculate()

	saved, err := repo.Save(ctx, cart)
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	got, err := repo.FindByOwner(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].LineTotal.Equal(decimal.RequireFromString("21")))
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("21")))
	assert.Equal(t, 2, got.TotalQuantity)

	// whole-document replace keeps the same _id
	got.Items = []domain.CartItem{}
	got.Recalculate()
	replaced, err := repo.Save(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, replaced.ID)

	got, err = repo.FindByOwner(ctx, ownerID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	assert.NotNil(t, got.Items)
	assert.True(t, got.TotalAmount.IsZero())

	count, err := db.Collection("carts").CountDocuments(ctx, map[string]string{"user_id": ownerID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSave_LastWriteWins(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewMongoRepository(db)
	ctx := context.Background()
	ownerID := gofakeit.UUID()

	_, err := repo.Save(ctx, domain.NewCart(ownerID, time.Now()))
	require.NoError(t, err)

	first, err := repo.FindByOwner(ctx, ownerID)
	require.NoError(t, err)
	second, err := repo.FindByOwner(ctx, ownerID)
	require.NoError(t, err)

	first.Items = append(first.Items, domain.CartItem{ID: "a", ProductID: "p1", Price: decimal.NewFromInt(1), Quantity: 1})
	first.Recalculate()
	second.Items = append(second.Items, domain.CartItem{ID: "b", ProductID: "p2", Price: decimal.NewFromInt(2), Quantity: 1})
	second.Recalculate()

	_, err = repo.Save(ctx, first)
	require.NoError(t, err)
	_, err = repo.Save(ctx, second)
	require.NoError(t, err)

	got, err := repo.FindByOwner(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "b", got.Items[0].ID)
}

func TestProductRepository_CRUD(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewProductRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, fakeProduct(5))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.True(t, created.Price.Equal(got.Price))
	assert.Equal(t, 5, got.Stock)

	got.Stock = 0
	got.Price = decimal.RequireFromString("3.25")
	updated, err := repo.Update(ctx, created.ID, got)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Stock)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("3.25")))

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), domain.ErrProductNotFound)

	_, err = repo.GetByID(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductRepository_ListAndSearch(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewProductRepository(db)
	ctx := context.Background()

	products := []domain.Product{
		{Title: "Red Phone", Description: "a phone", Price: decimal.NewFromInt(100), Stock: 3, Brand: "Acme", Category: "smartphones", Thumbnail: "https://x/1"},
		{Title: "Blue Laptop", Description: "a laptop", Price: decimal.NewFromInt(900), Stock: 0, Brand: "Acme", Category: "laptops", Thumbnail: "https://x/2"},
		{Title: "Green Phone", Description: "another phone", Price: decimal.NewFromInt(300), Stock: 1, Brand: "Zed", Category: "smartphones", Thumbnail: "https://x/3"},
	}
	n, err := repo.InsertMany(ctx, products)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	all, total, err := repo.List(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	phones, total, err := repo.List(ctx, domain.ProductFilter{Category: "smartphones"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, phones, 2)

	minPrice := decimal.NewFromInt(200)
	pricey, _, err := repo.List(ctx, domain.ProductFilter{MinPrice: &minPrice})
	require.NoError(t, err)
	assert.Len(t, pricey, 2)

	inStock, total, err := repo.List(ctx, domain.ProductFilter{InStock: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, inStock, 2)

	page2, total, err := repo.List(ctx, domain.ProductFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page2, 1)

	found, err := repo.Search(ctx, "phone")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	deleted, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}

func TestUserRepository_UniqueEmail(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewUserRepository(db)
	ctx := context.Background()
	email := gofakeit.Email()

	u, err := repo.Create(ctx, &domain.User{Name: gofakeit.Name(), Email: email, PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, u.Role)

	_, err = repo.Create(ctx, &domain.User{Name: gofakeit.Name(), Email: email, PasswordHash: "hash"})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	byEmail, err := repo.FindByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byEmail.Name = "Renamed"
	updated, err := repo.Update(ctx, byEmail)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	_, err = repo.FindByID(ctx, "000000000000000000000000")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestContextCancellation(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewMongoRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Nanosecond)
	defer cancel()
	time.Sleep(10 * time.Millisecond) // Ensure context is cancelled

	_, err := repo.FindByOwner(ctx, "user123")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "context")
}
