package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aurum/jewelstore/internal/domain/catalog"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/infrastructure/csvimport"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MaxImportRows bounds the data rows in one import file
const MaxImportRows = 2000

// ImportResult reports what a product import checked and created
type ImportResult struct {
	DryRun      bool                 `json:"dry_run"`
	TotalRows   int                  `json:"total_rows"`
	ValidRows   int                  `json:"valid_rows"`
	ErrorRows   int                  `json:"error_rows"`
	Created     int                  `json:"created"`
	Errors      []csvimport.RowError `json:"errors,omitempty"`
	TotalErrors int                  `json:"total_errors,omitempty"`
	Truncated   bool                 `json:"truncated,omitempty"`
}

func (r *ImportResult) setErrors(errs *csvimport.Errors) {
	r.ErrorRows = errs.Rows()
	r.Errors = errs.List()
	r.TotalErrors = errs.Total()
	r.Truncated = errs.Truncated()
}

func productImportSchema() *csvimport.Schema {
	return csvimport.NewSchema(
		csvimport.Col("code").Require().MaxLength(50).Distinct(),
		csvimport.Col("name").Require().MaxLength(200),
		csvimport.Col("description").MaxLength(5000),
		csvimport.Col("category").MaxLength(100),
		csvimport.Col("metal").Require().In("gold", "silver", "platinum"),
		csvimport.Col("purity").Require().MaxLength(10),
		csvimport.Col("market").Require().In("IN", "BH"),
		csvimport.Col("gross_weight").Require().Decimal().AtLeast(0),
		csvimport.Col("net_weight").Decimal().AtLeast(0),
		csvimport.Col("stone_weight").Decimal().AtLeast(0),
		csvimport.Col("making_pct").Decimal().AtLeast(0),
		csvimport.Col("wastage_pct").Decimal().AtLeast(0),
		csvimport.Col("stone_pct").Decimal().AtLeast(0),
		csvimport.Col("hallmarking_charge").Decimal().AtLeast(0),
		csvimport.Col("stock").Int().AtLeast(0),
		csvimport.Col("tags").MaxLength(1000),
		csvimport.Col("featured").Bool(),
	)
}

type pendingProduct struct {
	line int
	req  CreateProductRequest
}

// Import creates products from a CSV file with one product per row.
// Every row is checked before anything is written and a file with any bad
// row creates nothing. With dryRun set the file is only checked.
func (s *ProductService) Import(ctx context.Context, r io.Reader, dryRun bool) (*ImportResult, error) {
	reader, err := csvimport.NewReader(r)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_FILE", err.Error())
	}
	schema := productImportSchema()
	if missing := reader.Missing(schema.Required()...); len(missing) > 0 {
		return nil, shared.NewDomainError("INVALID_FILE", "Missing required columns: "+strings.Join(missing, ", "))
	}

	errs := csvimport.NewErrors(csvimport.DefaultMaxErrors)
	categories := make(map[string]*uuid.UUID)
	var pending []pendingProduct
	total := 0

	for {
		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		total++
		if total > MaxImportRows {
			return nil, shared.NewDomainError("TOO_MANY_ROWS", fmt.Sprintf("An import holds at most %d products", MaxImportRows))
		}
		if err != nil {
			errs.Addf(row.Line, "", csvimport.CodeMalformed, "", "%v", err)
			continue
		}
		if !schema.Check(row, errs) {
			continue
		}

		req := productRequestFromRow(row)
		if slug := row.Get("category"); slug != "" {
			id, err := s.importCategory(ctx, strings.ToLower(slug), categories)
			if err != nil {
				return nil, err
			}
			if id == nil {
				errs.Addf(row.Line, "category", csvimport.CodeNotFound, slug, "no active category with this slug")
				continue
			}
			req.CategoryID = id
		}
		if _, err := catalog.NewProduct(req.Code, req.Name, req.spec()); err != nil {
			de, ok := shared.GetDomainError(err)
			if !ok {
				return nil, err
			}
			errs.Addf(row.Line, "", csvimport.CodeInvalidValue, "", "%s", de.Message)
			continue
		}
		exists, err := s.productRepo.ExistsByCode(ctx, req.Code)
		if err != nil {
			return nil, err
		}
		if exists {
			errs.Addf(row.Line, "code", csvimport.CodeDuplicate, req.Code, "a product with this code already exists")
			continue
		}
		pending = append(pending, pendingProduct{line: row.Line, req: req})
	}
	if total == 0 {
		return nil, shared.NewDomainError("INVALID_FILE", "The file has no product rows")
	}

	result := &ImportResult{DryRun: dryRun, TotalRows: total, ValidRows: len(pending)}
	if errs.Any() || dryRun {
		result.setErrors(errs)
		return result, nil
	}

	for _, p := range pending {
		if _, err := s.create(ctx, p.req); err != nil {
			s.logger.Warn("product import stopped",
				zap.Int("line", p.line),
				zap.Int("created", result.Created),
				zap.Error(err))
			code, message := "INTERNAL_ERROR", "failed to create product"
			if de, ok := shared.GetDomainError(err); ok {
				code, message = de.Code, de.Message
			}
			errs.Add(csvimport.RowError{Row: p.line, Code: code, Message: message, Value: p.req.Code})
			break
		}
		result.Created++
	}
	result.setErrors(errs)

	s.logger.Info("products imported",
		zap.Int("rows", total),
		zap.Int("created", result.Created))
	return result, nil
}

// importCategory resolves a slug once per import; nil means unknown or inactive
func (s *ProductService) importCategory(ctx context.Context, slug string, cache map[string]*uuid.UUID) (*uuid.UUID, error) {
	if id, ok := cache[slug]; ok {
		return id, nil
	}
	category, err := s.categoryRepo.FindBySlug(ctx, slug)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	var id *uuid.UUID
	if err == nil && category.IsActive {
		id = &category.ID
	}
	cache[slug] = id
	return id, nil
}

func productRequestFromRow(row csvimport.Row) CreateProductRequest {
	req := CreateProductRequest{
		Code:              strings.ToUpper(row.Get("code")),
		Name:              row.Get("name"),
		Description:       row.Get("description"),
		Metal:             strings.ToLower(row.Get("metal")),
		Purity:            row.Get("purity"),
		Market:            strings.ToUpper(row.Get("market")),
		GrossWeight:       cellDecimal(row, "gross_weight"),
		NetWeight:         cellDecimal(row, "net_weight"),
		StoneWeight:       cellDecimal(row, "stone_weight"),
		MakingPct:         cellDecimal(row, "making_pct"),
		WastagePct:        cellDecimal(row, "wastage_pct"),
		StonePct:          cellDecimal(row, "stone_pct"),
		HallmarkingCharge: cellDecimal(row, "hallmarking_charge"),
		Stock:             int(cellDecimal(row, "stock").IntPart()),
		IsFeatured:        row.Get("featured") != "" && csvimport.ParseBool(row.Get("featured")),
	}
	for _, tag := range strings.Split(row.Get("tags"), "|") {
		if tag = strings.TrimSpace(tag); tag != "" {
			req.Tags = append(req.Tags, tag)
		}
	}
	return req
}

// cellDecimal reads a cell the schema already checked; blank is zero
func cellDecimal(row csvimport.Row, col string) decimal.Decimal {
	d, err := decimal.NewFromString(row.Get(col))
	if err != nil {
		return decimal.Zero
	}
	return d
}
