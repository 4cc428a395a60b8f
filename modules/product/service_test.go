package product

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	domain "github.com/example/product-catalog/domain/product"
	"github.com/example/product-catalog/pkg/validation"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

func newTestService(t *testing.T) (*Service, *Repository) {
	t.Helper()
	repo := NewRepository(setupTestDB(t))
	return NewService(repo, &mockLogger{}), repo
}

func jsonInput(t *testing.T, body string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var input map[string]any
	require.NoError(t, dec.Decode(&input))
	return input
}

func countRows(t *testing.T, repo *Repository) int64 {
	t.Helper()
	var n int64
	require.NoError(t, repo.db.Unscoped().Model(&domain.Product{}).Count(&n).Error)
	return n
}

func TestService_Create(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, jsonInput(t, `{"name":"Pen","price":100,"stock":5}`))
	require.NoError(t, err)

	assert.NotZero(t, p.ID)
	assert.Equal(t, "Pen", p.Name)
	assert.Nil(t, p.Description)
	assert.Equal(t, int64(100), p.Price)
	assert.Equal(t, int64(5), p.Stock)
	assert.True(t, p.IsActive, "is_active defaults to true")
	assert.Equal(t, domain.StateActive, p.State())

	other, err := svc.Create(ctx, jsonInput(t, `{"name":"Ink","price":"20","stock":"0","is_active":false,"description":"Black"}`))
	require.NoError(t, err)
	assert.NotEqual(t, p.ID, other.ID)
	assert.False(t, other.IsActive)
	require.NotNil(t, other.Description)
	assert.Equal(t, "Black", *other.Description)
}

func TestService_Create_ValidationLeavesStoreUntouched(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"missing name", `{"price":100,"stock":5}`, []string{"name"}},
		{"negative price", `{"name":"Pen","price":-1,"stock":5}`, []string{"price"}},
		{"negative stock", `{"name":"Pen","price":1,"stock":-5}`, []string{"stock"}},
		{"everything wrong", `{"name":"","price":"x","stock":1.5,"is_active":"nope"}`, []string{"name", "price", "stock", "is_active"}},
		{"name too long", `{"name":"` + strings.Repeat("a", 256) + `","price":1,"stock":1}`, []string{"name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService(t)

			_, err := svc.Create(context.Background(), jsonInput(t, tt.body))

			var verr *validation.Error
			require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
			assert.Len(t, verr.Errors, len(tt.fields))
			for _, field := range tt.fields {
				assert.Contains(t, verr.Errors, field)
			}
			assert.Zero(t, countRows(t, repo))
		})
	}
}

func TestService_Show(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, jsonInput(t, `{"name":"Pen","price":100,"stock":5}`))
	require.NoError(t, err)

	found, err := svc.Show(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, found.Name)

	require.NoError(t, svc.SoftDelete(ctx, p.ID))
	_, err = svc.Show(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_List(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, body := range []string{
		`{"name":"Cheap","price":1,"stock":1}`,
		`{"name":"Mid","price":50,"stock":1}`,
		`{"name":"Pricey","price":900,"stock":1,"is_active":false}`,
	} {
		_, err := svc.Create(ctx, jsonInput(t, body))
		require.NoError(t, err)
	}

	t.Run("defaults", func(t *testing.T) {
		page, err := svc.List(ctx, ListParams{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Equal(t, 15, page.PerPage)
		assert.Equal(t, 1, page.CurrentPage)
		assert.Equal(t, 1, page.LastPage())
		assert.Equal(t, 1, page.From())
		assert.Equal(t, 3, page.To())
		assert.Equal(t, "Pricey", page.Items[0].Name, "newest first")
	})

	t.Run("sort by price ascending", func(t *testing.T) {
		page, err := svc.List(ctx, ListParams{SortBy: "price", SortOrder: "asc"})
		require.NoError(t, err)
		require.Len(t, page.Items, 3)
		assert.Equal(t, []string{"Cheap", "Mid", "Pricey"}, []string{page.Items[0].Name, page.Items[1].Name, page.Items[2].Name})
	})

	t.Run("is_active flag words", func(t *testing.T) {
		for _, word := range []string{"1", "true", "on", "yes"} {
			page, err := svc.List(ctx, ListParams{IsActive: &word})
			require.NoError(t, err)
			assert.Equal(t, int64(2), page.Total, word)
		}
		no := "0"
		page, err := svc.List(ctx, ListParams{IsActive: &no})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("pagination", func(t *testing.T) {
		page, err := svc.List(ctx, ListParams{PerPage: "2", Page: "2"})
		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
		assert.Equal(t, 2, page.LastPage())
		assert.Equal(t, 3, page.From())
		assert.Equal(t, 3, page.To())
	})

	t.Run("page beyond the end is empty", func(t *testing.T) {
		page, err := svc.List(ctx, ListParams{Page: "9"})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Zero(t, page.From())
		assert.Zero(t, page.To())
	})

	t.Run("per_page is capped", func(t *testing.T) {
		for _, perPage := range []string{"101", "100000000000", "100000000000000"} {
			page, err := svc.List(ctx, ListParams{PerPage: perPage})
			require.NoError(t, err, perPage)
			assert.Equal(t, MaxPerPage, page.PerPage)
			assert.Len(t, page.Items, 3)
		}
	})

	t.Run("last page with representable positions", func(t *testing.T) {
		page, err := svc.List(ctx, ListParams{Page: "92233720368547758", PerPage: "2"})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, 92233720368547758, page.CurrentPage)
	})

	t.Run("invalid arguments", func(t *testing.T) {
		for _, params := range []ListParams{
			{SortBy: "secret"},
			{SortOrder: "up"},
			{PerPage: "0"},
			{PerPage: "many"},
			{Page: "9223372036854775807", PerPage: "2"},
			{Page: "92233720368547759", PerPage: "100"},
		} {
			_, err := svc.List(ctx, params)
			assert.ErrorIs(t, err, ErrInvalidArgument, "%+v", params)

			var argErr *ArgumentError
			require.True(t, errors.As(err, &argErr))
			assert.NotEmpty(t, argErr.Reason)
		}
	})
}

func TestService_Update(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, jsonInput(t, `{"name":"Pen","description":"Blue","price":100,"stock":5}`))
	require.NoError(t, err)

	t.Run("partial update", func(t *testing.T) {
		updated, err := svc.Update(ctx, p.ID, jsonInput(t, `{"stock":7,"description":null}`))
		require.NoError(t, err)
		assert.Equal(t, int64(7), updated.Stock)
		assert.Nil(t, updated.Description)
		assert.Equal(t, "Pen", updated.Name)
		assert.Equal(t, int64(100), updated.Price)
	})

	t.Run("invalid present field", func(t *testing.T) {
		_, err := svc.Update(ctx, p.ID, jsonInput(t, `{"price":-3}`))
		var verr *validation.Error
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Errors, "price")

		found, err := svc.Show(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(100), found.Price)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := svc.Update(ctx, 4242, jsonInput(t, `{"stock":1}`))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("soft-deleted product", func(t *testing.T) {
		require.NoError(t, svc.SoftDelete(ctx, p.ID))
		_, err := svc.Update(ctx, p.ID, jsonInput(t, `{"stock":1}`))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_SoftDeleteTwice(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, jsonInput(t, `{"name":"Pen","price":100,"stock":5}`))
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(ctx, p.ID))
	assert.ErrorIs(t, svc.SoftDelete(ctx, p.ID), ErrAlreadyDeleted)

	stored, err := repo.Find(ctx, p.ID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.StateSoftDeleted, stored.State())

	assert.ErrorIs(t, svc.SoftDelete(ctx, 4242), ErrNotFound)
}

func TestService_Restore(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, jsonInput(t, `{"name":"Pen","price":100,"stock":5}`))
	require.NoError(t, err)

	_, err = svc.Restore(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotDeleted)

	require.NoError(t, svc.SoftDelete(ctx, p.ID))

	restored, err := svc.Restore(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, restored.DeletedAt.Valid)
	assert.Equal(t, domain.StateActive, restored.State())

	_, err = svc.Restore(ctx, 4242)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_HardDestroy(t *testing.T) {
	for _, softDeleteFirst := range []bool{false, true} {
		svc, repo := newTestService(t)
		ctx := context.Background()

		p, err := svc.Create(ctx, jsonInput(t, `{"name":"Pen","price":100,"stock":5}`))
		require.NoError(t, err)
		if softDeleteFirst {
			require.NoError(t, svc.SoftDelete(ctx, p.ID))
		}

		state, err := svc.HardDestroy(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatePurged, state)

		_, err = repo.Find(ctx, p.ID, false)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repo.Find(ctx, p.ID, true)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = svc.Show(ctx, p.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = svc.HardDestroy(ctx, p.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	}
}
