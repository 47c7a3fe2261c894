package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/aurum/jewelstore/internal/domain/catalog"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/infrastructure/csvimport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const importHeader = "code,name,category,metal,purity,market,gross_weight,making_pct,stock,tags,featured\n"

func TestProductService_Import(t *testing.T) {
	ctx := context.Background()

	rings, err := catalog.NewCategory("Rings", "rings")
	require.NoError(t, err)

	t.Run("creates every row when the file is clean", func(t *testing.T) {
		f := newProductFixture()
		f.categories.On("FindBySlug", ctx, "rings").Return(rings, nil).Once()
		f.categories.On("FindByID", ctx, rings.ID).Return(rings, nil)
		f.products.On("ExistsByCode", ctx, mock.Anything).Return(false, nil)
		f.products.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)
		f.events.On("Publish", ctx, mock.Anything).Return(nil)

		file := importHeader +
			"rng-101,Plain Band,Rings,Gold,22k,in,4.5,12,3,band|daily,yes\n" +
			"RNG-102,Twist Band,rings,gold,22K,IN,5,10,,,\n"
		result, err := f.service.Import(ctx, strings.NewReader(file), false)
		require.NoError(t, err)

		assert.Equal(t, 2, result.TotalRows)
		assert.Equal(t, 2, result.ValidRows)
		assert.Equal(t, 2, result.Created)
		assert.Zero(t, result.ErrorRows)
		f.products.AssertNumberOfCalls(t, "Save", 2)
		f.categories.AssertNumberOfCalls(t, "FindBySlug", 1)

		saved := f.products.Calls[len(f.products.Calls)-1].Arguments.Get(1).(*catalog.Product)
		assert.Equal(t, "RNG-102", saved.Code)
		assert.Equal(t, &rings.ID, saved.CategoryID)
		f.pricer.AssertNotCalled(t, "PriceProduct", mock.Anything, mock.Anything)
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		f := newProductFixture()
		f.products.On("ExistsByCode", ctx, "RNG-101").Return(false, nil)

		result, err := f.service.Import(ctx, strings.NewReader(importHeader+"RNG-101,Band,,gold,22K,IN,4.5,12,1,,\n"), true)
		require.NoError(t, err)
		assert.True(t, result.DryRun)
		assert.Equal(t, 1, result.ValidRows)
		assert.Zero(t, result.Created)
		f.products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("one bad row blocks the file", func(t *testing.T) {
		f := newProductFixture()
		f.categories.On("FindBySlug", ctx, "chains").Return(nil, shared.ErrNotFound)
		f.products.On("ExistsByCode", ctx, "RNG-101").Return(false, nil)
		f.products.On("ExistsByCode", ctx, "RNG-103").Return(true, nil)

		file := importHeader +
			"RNG-101,Band,,gold,22K,IN,4.5,12,1,,\n" +
			"RNG-101,Copy,,gold,22K,IN,4.5,12,1,,\n" +
			"RNG-102,Chain,chains,gold,22K,IN,8,12,1,,\n" +
			"RNG-103,Existing,,gold,22K,IN,3,12,1,,\n" +
			"RNG-104,Heavy,,gold,22K,IN,-2,12,1,,\n" +
			"RNG-105,Alloy,,gold,99K,IN,2,12,1,,\n"
		result, err := f.service.Import(ctx, strings.NewReader(file), false)
		require.NoError(t, err)

		assert.Equal(t, 6, result.TotalRows)
		assert.Equal(t, 1, result.ValidRows)
		assert.Equal(t, 5, result.ErrorRows)
		assert.Zero(t, result.Created)
		f.products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)

		codes := map[int]string{}
		for _, e := range result.Errors {
			codes[e.Row] = e.Code
		}
		assert.Equal(t, map[int]string{
			3: csvimport.CodeDuplicate,
			4: csvimport.CodeNotFound,
			5: csvimport.CodeDuplicate,
			6: csvimport.CodeOutOfRange,
			7: csvimport.CodeInvalidValue,
		}, codes)
	})

	t.Run("file level problems", func(t *testing.T) {
		f := newProductFixture()

		_, err := f.service.Import(ctx, strings.NewReader(""), false)
		assert.Equal(t, "INVALID_FILE", domainCode(t, err))

		_, err = f.service.Import(ctx, strings.NewReader("code,name\nA,B\n"), false)
		assert.Equal(t, "INVALID_FILE", domainCode(t, err))
		assert.Contains(t, err.Error(), "metal")

		_, err = f.service.Import(ctx, strings.NewReader(importHeader), false)
		assert.Equal(t, "INVALID_FILE", domainCode(t, err))
	})
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	de, ok := shared.GetDomainError(err)
	require.True(t, ok, "expected a domain error, got %v", err)
	return de.Code
}
