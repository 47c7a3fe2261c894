package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	catalogapp "github.com/aurum/jewelstore/internal/application/catalog"
	contentapp "github.com/aurum/jewelstore/internal/application/content"
	pricingapp "github.com/aurum/jewelstore/internal/application/pricing"
	settingsapp "github.com/aurum/jewelstore/internal/application/settings"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// File is the layout of a seed document. Rows reference each other by
// slug or product code so the file stays readable.
type File struct {
	Settings     []SettingSeed  `yaml:"settings"`
	MetalRates   []RateSeed     `yaml:"metal_rates"`
	Categories   []CategorySeed `yaml:"categories"`
	Products     []ProductSeed  `yaml:"products"`
	HomeSections []SectionSeed  `yaml:"home_sections"`
}

type SettingSeed struct {
	Key         string `yaml:"key"`
	Value       string `yaml:"value"`
	Type        string `yaml:"type"`
	Group       string `yaml:"group"`
	Description string `yaml:"description"`
	Public      bool   `yaml:"public"`
}

type RateSeed struct {
	Metal       string          `yaml:"metal"`
	Purity      string          `yaml:"purity"`
	Market      string          `yaml:"market"`
	RatePerGram decimal.Decimal `yaml:"rate_per_gram"`
}

type CategorySeed struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	Parent      string `yaml:"parent"`
	SortOrder   int    `yaml:"sort_order"`
}

type ProductSeed struct {
	Code              string          `yaml:"code"`
	Name              string          `yaml:"name"`
	Description       string          `yaml:"description"`
	Category          string          `yaml:"category"`
	Metal             string          `yaml:"metal"`
	Purity            string          `yaml:"purity"`
	Market            string          `yaml:"market"`
	GrossWeight       decimal.Decimal `yaml:"gross_weight"`
	NetWeight         decimal.Decimal `yaml:"net_weight"`
	StoneWeight       decimal.Decimal `yaml:"stone_weight"`
	MakingPct         decimal.Decimal `yaml:"making_pct"`
	WastagePct        decimal.Decimal `yaml:"wastage_pct"`
	StonePct          decimal.Decimal `yaml:"stone_pct"`
	HallmarkingCharge decimal.Decimal `yaml:"hallmarking_charge"`
	Stock             int             `yaml:"stock"`
	Tags              []string        `yaml:"tags"`
	Featured          bool            `yaml:"featured"`
}

type SectionSeed struct {
	Key      string   `yaml:"key"`
	Type     string   `yaml:"type"`
	Title    string   `yaml:"title"`
	Subtitle string   `yaml:"subtitle"`
	ImageURL string   `yaml:"image_url"`
	LinkURL  string   `yaml:"link_url"`
	Products []string `yaml:"products"`
	Category string   `yaml:"category"`
}

// Parse decodes a seed document, rejecting unknown fields
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &f, nil
}

// Counts reports how many rows a run created or updated
type Counts struct {
	Settings   int
	Rates      int
	Categories int
	Products   int
	Sections   int
}

// Seeder writes a seed document through the application services so every
// row passes the same validation as the API
type Seeder struct {
	settings   *settingsapp.SettingService
	rates      *pricingapp.RateService
	categories *catalogapp.CategoryService
	products   *catalogapp.ProductService
	sections   *contentapp.HomeSectionService
	logger     *zap.Logger

	categoryIDs map[string]uuid.UUID
	productIDs  map[string]uuid.UUID
}

func NewSeeder(
	settings *settingsapp.SettingService,
	rates *pricingapp.RateService,
	categories *catalogapp.CategoryService,
	products *catalogapp.ProductService,
	sections *contentapp.HomeSectionService,
	logger *zap.Logger,
) *Seeder {
	return &Seeder{
		settings:    settings,
		rates:       rates,
		categories:  categories,
		products:    products,
		sections:    sections,
		logger:      logger,
		categoryIDs: map[string]uuid.UUID{},
		productIDs:  map[string]uuid.UUID{},
	}
}

// Apply is idempotent: settings and rates are upserted, while existing
// categories, products and sections are left untouched
func (s *Seeder) Apply(ctx context.Context, f *File) (Counts, error) {
	var c Counts

	for _, row := range f.Settings {
		if _, err := s.settings.Upsert(ctx, row.Key, settingsapp.UpsertSettingRequest{
			Value:       row.Value,
			ValueType:   row.Type,
			Group:       row.Group,
			Description: row.Description,
			IsPublic:    row.Public,
		}); err != nil {
			return c, fmt.Errorf("setting %s: %w", row.Key, err)
		}
		c.Settings++
	}

	for _, row := range f.MetalRates {
		if _, err := s.rates.Upsert(ctx, pricingapp.UpsertRateRequest{
			Metal:       row.Metal,
			Purity:      row.Purity,
			Market:      row.Market,
			RatePerGram: row.RatePerGram,
			Source:      "seed",
		}); err != nil {
			return c, fmt.Errorf("rate %s/%s/%s: %w", row.Metal, row.Purity, row.Market, err)
		}
		c.Rates++
	}

	for _, row := range f.Categories {
		created, err := s.category(ctx, row)
		if err != nil {
			return c, fmt.Errorf("category %s: %w", row.Slug, err)
		}
		if created {
			c.Categories++
		}
	}

	for _, row := range f.Products {
		created, err := s.product(ctx, row)
		if err != nil {
			return c, fmt.Errorf("product %s: %w", row.Code, err)
		}
		if created {
			c.Products++
		}
	}

	for _, row := range f.HomeSections {
		created, err := s.section(ctx, row)
		if err != nil {
			return c, fmt.Errorf("home section %s: %w", row.Key, err)
		}
		if created {
			c.Sections++
		}
	}

	return c, nil
}

func (s *Seeder) category(ctx context.Context, row CategorySeed) (bool, error) {
	if row.Slug != "" {
		existing, err := s.categories.GetBySlug(ctx, row.Slug)
		if err == nil {
			s.categoryIDs[row.Slug] = existing.ID
			return false, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return false, err
		}
	}

	parentID, err := s.categoryRef(ctx, row.Parent)
	if err != nil {
		return false, err
	}
	created, err := s.categories.Create(ctx, catalogapp.CreateCategoryRequest{
		Name:        row.Name,
		Slug:        row.Slug,
		Description: row.Description,
		ParentID:    parentID,
		SortOrder:   row.SortOrder,
	})
	if err != nil {
		return false, err
	}
	s.categoryIDs[created.Slug] = created.ID
	return true, nil
}

func (s *Seeder) product(ctx context.Context, row ProductSeed) (bool, error) {
	existing, err := s.products.GetByCode(ctx, row.Code, true)
	if err == nil {
		s.productIDs[row.Code] = existing.ID
		return false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return false, err
	}

	categoryID, err := s.categoryRef(ctx, row.Category)
	if err != nil {
		return false, err
	}
	created, err := s.products.Create(ctx, catalogapp.CreateProductRequest{
		Code:              row.Code,
		Name:              row.Name,
		Description:       row.Description,
		CategoryID:        categoryID,
		Metal:             row.Metal,
		Purity:            row.Purity,
		Market:            row.Market,
		GrossWeight:       row.GrossWeight,
		NetWeight:         row.NetWeight,
		StoneWeight:       row.StoneWeight,
		MakingPct:         row.MakingPct,
		WastagePct:        row.WastagePct,
		StonePct:          row.StonePct,
		HallmarkingCharge: row.HallmarkingCharge,
		Stock:             row.Stock,
		Tags:              row.Tags,
		IsFeatured:        row.Featured,
	})
	if err != nil {
		return false, err
	}
	s.productIDs[row.Code] = created.ID
	return true, nil
}

func (s *Seeder) section(ctx context.Context, row SectionSeed) (bool, error) {
	categoryID, err := s.categoryRef(ctx, row.Category)
	if err != nil {
		return false, err
	}
	productIDs := make([]uuid.UUID, 0, len(row.Products))
	for _, code := range row.Products {
		id, err := s.productRef(ctx, code)
		if err != nil {
			return false, err
		}
		productIDs = append(productIDs, id)
	}

	_, err = s.sections.Create(ctx, contentapp.CreateSectionRequest{
		Key: row.Key,
		SectionRequest: contentapp.SectionRequest{
			Type:       row.Type,
			Title:      row.Title,
			Subtitle:   row.Subtitle,
			ImageURL:   row.ImageURL,
			LinkURL:    row.LinkURL,
			ProductIDs: productIDs,
			CategoryID: categoryID,
		},
	})
	if errors.Is(err, shared.ErrAlreadyExists) {
		return false, nil
	}
	return err == nil, err
}

func (s *Seeder) categoryRef(ctx context.Context, slug string) (*uuid.UUID, error) {
	if slug == "" {
		return nil, nil
	}
	if id, ok := s.categoryIDs[slug]; ok {
		return &id, nil
	}
	existing, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("category %q: %w", slug, err)
	}
	s.categoryIDs[slug] = existing.ID
	return &existing.ID, nil
}

func (s *Seeder) productRef(ctx context.Context, code string) (uuid.UUID, error) {
	if id, ok := s.productIDs[code]; ok {
		return id, nil
	}
	existing, err := s.products.GetByCode(ctx, code, true)
	if err != nil {
		return uuid.Nil, fmt.Errorf("product %q: %w", code, err)
	}
	s.productIDs[code] = existing.ID
	return existing.ID, nil
}
