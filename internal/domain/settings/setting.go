package settings

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ValueType is the declared type of a setting's value
type ValueType string

const (
	TypeString ValueType = "string"
	TypeNumber ValueType = "number"
	TypeBool   ValueType = "bool"
	TypeJSON   ValueType = "json"
)

// Well-known keys
const (
	KeyStoreName            = "store.name"
	KeyStoreEmail           = "store.email"
	KeyStorePhone           = "store.phone"
	KeyStoreAddress         = "store.address"
	KeyEstimateValidityDays = "estimate.validity_days"
	KeyLowStockThreshold    = "inventory.low_stock_threshold"
)

// TaxKey returns the key of a market's tax percentage, e.g. tax.in.gst_percent
func TaxKey(marketKey, tax string) string {
	return "tax." + marketKey + "." + tax + "_percent"
}

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z0-9_]+)*$`)

// AppSetting is a typed key/value configuration row editable from the back-office
type AppSetting struct {
	shared.BaseAggregateRoot
	Key         string    `gorm:"type:varchar(120);not null;uniqueIndex"`
	Value       string    `gorm:"type:text;not null"`
	ValueType   ValueType `gorm:"type:varchar(10);not null"`
	Group       string    `gorm:"column:setting_group;type:varchar(50);not null;default:'general';index"`
	Description string    `gorm:"type:varchar(500)"`
	IsPublic    bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (AppSetting) TableName() string {
	return "app_settings"
}

// NewAppSetting creates a setting after checking the value parses as its type
func NewAppSetting(key, value string, vt ValueType, group, description string, public bool) (*AppSetting, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if !keyPattern.MatchString(key) || len(key) > 120 {
		return nil, shared.NewDomainError("INVALID_KEY", "Setting key must be dotted lowercase, e.g. tax.in.gst_percent")
	}
	if group == "" {
		group = strings.SplitN(key, ".", 2)[0]
	}
	s := &AppSetting{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Key:               key,
		Group:             group,
		Description:       description,
		IsPublic:          public,
	}
	if err := s.set(value, vt); err != nil {
		return nil, err
	}
	return s, nil
}

// Change replaces value, type and metadata, reactivating a soft-deleted setting
func (s *AppSetting) Change(value string, vt ValueType, description string, public bool) error {
	if err := s.set(value, vt); err != nil {
		return err
	}
	s.Description = description
	s.IsPublic = public
	s.IsActive = true
	s.Touch()
	s.IncrementVersion()
	return nil
}

func (s *AppSetting) set(value string, vt ValueType) error {
	if vt == "" {
		vt = TypeString
	}
	if err := ValidateValue(value, vt); err != nil {
		return err
	}
	s.Value = value
	s.ValueType = vt
	return nil
}

// ValidateValue checks that value parses as vt
func ValidateValue(value string, vt ValueType) error {
	switch vt {
	case TypeString:
		return nil
	case TypeNumber:
		if _, err := decimal.NewFromString(strings.TrimSpace(value)); err != nil {
			return shared.NewDomainError("INVALID_VALUE", "Value must be a number")
		}
	case TypeBool:
		if _, err := strconv.ParseBool(strings.TrimSpace(value)); err != nil {
			return shared.NewDomainError("INVALID_VALUE", "Value must be true or false")
		}
	case TypeJSON:
		if !json.Valid([]byte(value)) {
			return shared.NewDomainError("INVALID_VALUE", "Value must be valid JSON")
		}
	default:
		return shared.NewDomainError("INVALID_VALUE_TYPE", "Value type must be string, number, bool or json")
	}
	return nil
}

// Decimal returns the value as a decimal
func (s *AppSetting) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s.Value))
}

// Bool returns the value as a bool
func (s *AppSetting) Bool() (bool, error) {
	return strconv.ParseBool(strings.TrimSpace(s.Value))
}

// Typed returns the value decoded to its declared type for API output
func (s *AppSetting) Typed() interface{} {
	switch s.ValueType {
	case TypeNumber:
		if d, err := s.Decimal(); err == nil {
			return d
		}
	case TypeBool:
		if b, err := s.Bool(); err == nil {
			return b
		}
	case TypeJSON:
		return json.RawMessage(s.Value)
	}
	return s.Value
}

// Default describes a setting seeded on first start
type Default struct {
	Key         string
	Value       string
	Type        ValueType
	Description string
	Public      bool
}

// Defaults are the settings the store needs to price and bill
var Defaults = []Default{
	{KeyStoreName, "Aurum Jewellers", TypeString, "Store name printed on invoices", true},
	{KeyStoreEmail, "", TypeString, "Store contact email", true},
	{KeyStorePhone, "", TypeString, "Store contact phone", true},
	{KeyStoreAddress, "", TypeString, "Store address printed on invoices", true},
	{TaxKey("in", "gst"), "3", TypeNumber, "GST percentage for India", true},
	{TaxKey("in", "vat"), "0", TypeNumber, "VAT percentage for India", true},
	{TaxKey("bh", "gst"), "0", TypeNumber, "GST percentage for Bahrain", true},
	{TaxKey("bh", "vat"), "10", TypeNumber, "VAT percentage for Bahrain", true},
	{KeyEstimateValidityDays, "7", TypeNumber, "Days an estimate stays valid", false},
	{KeyLowStockThreshold, "2", TypeNumber, "Stock level that triggers a low-stock alert", false},
}

// SettingRepository defines the interface for setting persistence
type SettingRepository interface {
	FindByKey(ctx context.Context, key string) (*AppSetting, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]AppSetting, error)
	Save(ctx context.Context, setting *AppSetting) error
}
