package models

import (
	"github.com/barcodeprint/backend/internal/domain/barcode"
)

// BarcodeModel is the GORM model for the barcodes table
type BarcodeModel struct {
	AggregateModel
	Code  string `gorm:"type:varchar(32);not null;uniqueIndex"`
	Title string `gorm:"type:varchar(255);not null"`
}

// TableName returns the table name for BarcodeModel
func (BarcodeModel) TableName() string {
	return "barcodes"
}

// ToDomain converts BarcodeModel to domain Barcode
func (m *BarcodeModel) ToDomain() *barcode.Barcode {
	return &barcode.Barcode{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		Title:             m.Title,
	}
}

// FromDomain populates the model from a domain Barcode
func (m *BarcodeModel) FromDomain(b *barcode.Barcode) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.Code = b.Code
	m.Title = b.Title
}

// BarcodeModelFromDomain creates a BarcodeModel from domain Barcode
func BarcodeModelFromDomain(b *barcode.Barcode) *BarcodeModel {
	m := &BarcodeModel{}
	m.FromDomain(b)
	return m
}
