package models

import (
	"time"

	"github.com/barcodeprint/backend/internal/domain/printing"
	"github.com/google/uuid"
)

// PrintJobModel is the GORM model for print_jobs table
type PrintJobModel struct {
	AggregateModel
	Kind         string      `gorm:"type:varchar(20);not null;index"`
	PaperSize    string      `gorm:"column:paper_size;type:varchar(20);not null"`
	LayoutMode   string      `gorm:"column:layout_mode;type:varchar(20);not null"`
	BarcodeIDs   []uuid.UUID `gorm:"column:barcode_ids;type:text;not null;serializer:json"`
	ItemCount    int         `gorm:"column:item_count;not null"`
	PageCount    int         `gorm:"column:page_count;not null;default:0"`
	Status       string      `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	OutputKey    string      `gorm:"column:output_key;type:text"`
	OutputURL    string      `gorm:"column:output_url;type:text"`
	ContentType  string      `gorm:"column:content_type;type:varchar(100)"`
	FileName     string      `gorm:"column:file_name;type:varchar(255)"`
	ErrorMessage string      `gorm:"column:error_message;type:text"`
	CompletedAt  *time.Time  `gorm:"column:completed_at"`
}

// TableName returns the table name for PrintJobModel
func (PrintJobModel) TableName() string {
	return "print_jobs"
}

// ToDomain converts PrintJobModel to domain PrintJob
func (m *PrintJobModel) ToDomain() *printing.PrintJob {
	ids := make([]uuid.UUID, len(m.BarcodeIDs))
	copy(ids, m.BarcodeIDs)

	return &printing.PrintJob{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Kind:              printing.JobKind(m.Kind),
		PaperSize:         printing.PaperSize(m.PaperSize),
		LayoutMode:        printing.LayoutMode(m.LayoutMode),
		BarcodeIDs:        ids,
		ItemCount:         m.ItemCount,
		PageCount:         m.PageCount,
		Status:            printing.JobStatus(m.Status),
		OutputKey:         m.OutputKey,
		OutputURL:         m.OutputURL,
		ContentType:       m.ContentType,
		FileName:          m.FileName,
		ErrorMessage:      m.ErrorMessage,
		CompletedAt:       m.CompletedAt,
	}
}

// PrintJobModelFromDomain creates a PrintJobModel from domain PrintJob
func PrintJobModelFromDomain(j *printing.PrintJob) *PrintJobModel {
	m := &PrintJobModel{
		Kind:         string(j.Kind),
		PaperSize:    string(j.PaperSize),
		LayoutMode:   string(j.LayoutMode),
		BarcodeIDs:   j.BarcodeIDs,
		ItemCount:    j.ItemCount,
		PageCount:    j.PageCount,
		Status:       string(j.Status),
		OutputKey:    j.OutputKey,
		OutputURL:    j.OutputURL,
		ContentType:  j.ContentType,
		FileName:     j.FileName,
		ErrorMessage: j.ErrorMessage,
		CompletedAt:  j.CompletedAt,
	}
	m.FromDomainAggregateRoot(j.BaseAggregateRoot)
	return m
}
