package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"lead-backend/internal/models"
	"lead-backend/internal/repositories"
	"lead-backend/internal/storage"
	"lead-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/xuri/excelize/v2"
)

// ReportService generates lead exports, optionally archiving a copy
// to R2
type ReportService struct {
	LeadRepo *repositories.LeadRepository
	DistRepo *repositories.DistributionRepository
	Archive  *storage.R2Client
}

func NewReportService(leadRepo *repositories.LeadRepository, distRepo *repositories.DistributionRepository, archive *storage.R2Client) *ReportService {
	return &ReportService{
		LeadRepo: leadRepo,
		DistRepo: distRepo,
		Archive:  archive,
	}
}

// LeadsExcel renders the filtered leads as an .xlsx workbook
func (s *ReportService) LeadsExcel(ctx context.Context, filter *models.LeadFilter) ([]byte, string, error) {
	leads, err := s.LeadRepo.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Leads"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Contact Name", "Phone", "Source", "Status", "Assigned To", "Assigned At", "Created At", "Initial Message", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDDDDD"}, Pattern: 1},
	})
	f.SetCellStyle(sheet, "A1", "J1", headerStyle)

	for row, l := range leads {
		values := []interface{}{
			l.ID,
			l.ContactName,
			l.Phone,
			l.Source,
			l.Status,
			"",
			"",
			l.CreatedAt.Format(timeutil.DateTimeLayout),
			l.InitialMessage,
			l.Notes,
		}
		if l.AssignedBroker != nil {
			values[5] = l.AssignedBroker.Name
		}
		if l.AssignedAt != nil {
			values[6] = l.AssignedAt.Format(timeutil.DateTimeLayout)
		}

		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	f.SetColWidth(sheet, "B", "B", 24)
	f.SetColWidth(sheet, "C", "C", 18)
	f.SetColWidth(sheet, "F", "H", 20)
	f.SetColWidth(sheet, "I", "J", 40)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to write workbook: %w", err)
	}

	filename := fmt.Sprintf("leads_%s.xlsx", timeutil.Now().Format("2006-01-02_150405"))
	s.archive(filename, buf.Bytes(), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return buf.Bytes(), filename, nil
}

// LeadsPDF renders the filtered leads as a tabular PDF report
func (s *ReportService) LeadsPDF(ctx context.Context, filter *models.LeadFilter) ([]byte, string, error) {
	leads, err := s.LeadRepo.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(277, 10, "Leads Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(277, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Table header
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(12, 7, "ID", "1", 0, "C", true, 0, "")
	pdf.CellFormat(50, 7, "Contact", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Phone", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Source", "1", 0, "C", true, 0, "")
	pdf.CellFormat(28, 7, "Status", "1", 0, "C", true, 0, "")
	pdf.CellFormat(45, 7, "Assigned To", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Created", "1", 0, "C", true, 0, "")
	pdf.CellFormat(42, 7, "Assigned", "1", 1, "C", true, 0, "")

	// Table rows
	pdf.SetFont("Arial", "", 9)
	for _, l := range leads {
		name := l.ContactName
		if len(name) > 28 {
			name = name[:25] + "..."
		}
		assignedTo := ""
		if l.AssignedBroker != nil {
			assignedTo = l.AssignedBroker.Name
			if len(assignedTo) > 25 {
				assignedTo = assignedTo[:22] + "..."
			}
		}
		assignedAt := ""
		if l.AssignedAt != nil {
			assignedAt = l.AssignedAt.Format("02-Jan-2006 15:04")
		}

		pdf.CellFormat(12, 6, fmt.Sprintf("%d", l.ID), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, l.Phone, "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, l.Source, "1", 0, "C", false, 0, "")
		pdf.CellFormat(28, 6, l.Status, "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 6, assignedTo, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, l.CreatedAt.Format("02-Jan-2006 15:04"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(42, 6, assignedAt, "1", 1, "C", false, 0, "")
	}

	// Summary line
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(277, 7, fmt.Sprintf("Total: %d leads", len(leads)), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("leads_%s.pdf", timeutil.Now().Format("2006-01-02_150405"))
	s.archive(filename, buf.Bytes(), "application/pdf")
	return buf.Bytes(), filename, nil
}

// archive stores a copy of the export in R2 when configured.
// Failures are logged, never surfaced to the caller.
func (s *ReportService) archive(filename string, data []byte, contentType string) {
	if s.Archive == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		key := "exports/" + filename
		if err := s.Archive.Upload(ctx, key, data, contentType); err != nil {
			log.Printf("[Report] Archive upload failed for %s: %v", key, err)
		}
	}()
}
