package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nurpe/freight-cost-reports/internal/model"
)

type ExcelGenerator interface {
	Generate(report model.CostExport) ([]byte, error)
}

type PDFGenerator interface {
	Generate(report model.CostExport) ([]byte, error)
}

type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportXLSX ExportFormat = "xlsx"
	ExportPDF  ExportFormat = "pdf"
)

func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportJSON:
		return ExportJSON, nil
	case ExportXLSX:
		return ExportXLSX, nil
	case ExportPDF:
		return ExportPDF, nil
	default:
		return "", fmt.Errorf("%w: unsupported export format %q", ErrInvalidInput, raw)
	}
}

type ExportFile struct {
	FileName    string
	ContentType string
	Content     []byte
}

// RenderExport computes the export and renders it as an xlsx or pdf document.
func (s *CostReportService) RenderExport(ctx context.Context, input ReportInput, format ExportFormat) (*ExportFile, error) {
	var generate func(model.CostExport) ([]byte, error)
	var contentType string
	switch format {
	case ExportXLSX:
		if s.excel == nil {
			return nil, fmt.Errorf("excel generator is not configured")
		}
		generate = s.excel.Generate
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ExportPDF:
		if s.pdf == nil {
			return nil, fmt.Errorf("pdf generator is not configured")
		}
		generate = s.pdf.Generate
		contentType = "application/pdf"
	default:
		return nil, fmt.Errorf("%w: format %q cannot be rendered", ErrInvalidInput, format)
	}

	report, err := s.ExportCosts(ctx, input)
	if err != nil {
		return nil, err
	}
	content, err := generate(*report)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return &ExportFile{
		FileName:    exportFileName(*report, format),
		ContentType: contentType,
		Content:     content,
	}, nil
}

func exportFileName(report model.CostExport, format ExportFormat) string {
	return fmt.Sprintf("%s_costs_%s_%s.%s",
		strings.ToLower(string(report.Kind)),
		report.PeriodStart.Format("20060102"),
		report.PeriodEnd.Format("20060102"),
		format,
	)
}
