package excel

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/tripdesk/supplier-contracts/internal/inventory"
	"github.com/tripdesk/supplier-contracts/internal/model"
)

const (
	summarySheet     = "Summary"
	allocationsSheet = "Allocations"
	warningsSheet    = "Release warnings"
	deadlinesSheet   = "Deadlines"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) GenerateContract(doc model.ContractDocument) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	file.SetSheetName("Sheet1", summarySheet)
	g.writeContractSummary(file, doc)

	names := map[uuid.UUID]string{doc.Contract.ID: doc.Contract.Name}
	if err := g.writeAllocations(file, doc.Allocations, names); err != nil {
		return nil, err
	}
	warnings := inventory.ReleaseWarnings(doc.Allocations, doc.GeneratedAt, doc.HorizonDays)
	if err := g.writeWarnings(file, warnings, names); err != nil {
		return nil, err
	}
	if err := g.writeDeadlines(file, doc.Deadlines, doc.GeneratedAt); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) GenerateReleaseReport(report model.ReleaseReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	names := make(map[uuid.UUID]string, len(report.Contracts))
	for _, c := range report.Contracts {
		names[c.ID] = c.Name
	}
	warnings := inventory.ReleaseWarnings(report.Allocations, report.GeneratedAt, report.HorizonDays)
	counts := inventory.CountByUrgency(warnings)
	summary := inventory.Summarize(report.Allocations)

	file.SetSheetName("Sheet1", summarySheet)
	set := setter(file, summarySheet)
	set("A1", "Release report")
	set("A2", "Generated at")
	set("B2", formatDateTime(report.GeneratedAt))
	set("A3", "Horizon, days")
	set("B3", report.HorizonDays)
	set("A4", "Contracts")
	set("B4", len(report.Contracts))
	set("A6", "Critical")
	set("B6", counts[inventory.UrgencyCritical])
	set("A7", "High")
	set("B7", counts[inventory.UrgencyHigh])
	set("A8", "Medium")
	set("B8", counts[inventory.UrgencyMedium])
	writeInventorySummary(set, 10, summary)
	_ = file.SetColWidth(summarySheet, "A", "A", 28)
	_ = file.SetColWidth(summarySheet, "B", "B", 22)

	if err := g.writeWarnings(file, warnings, names); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeContractSummary(file *excelize.File, doc model.ContractDocument) {
	c := doc.Contract
	set := setter(file, summarySheet)

	set("A1", "Contract")
	set("B1", c.Name)
	set("A2", "Number")
	set("B2", c.ContractNumber)
	set("A3", "Supplier")
	set("B3", c.SupplierName)
	set("A4", "Type")
	set("B4", string(c.ContractType))
	set("A5", "Status")
	set("B5", string(c.Status))
	set("A6", "Valid from")
	set("B6", formatDate(c.ValidFrom))
	set("A7", "Valid to")
	set("B7", formatDate(c.ValidTo))
	set("A8", "Currency")
	set("B8", c.Currency)
	set("A9", "Commission, %")
	set("B9", c.CommissionPercent.StringFixed(2))
	set("A10", "Rate plans")
	set("B10", len(doc.Rates))
	set("A11", "Generated at")
	set("B11", formatDateTime(doc.GeneratedAt))

	writeInventorySummary(set, 13, inventory.Summarize(doc.Allocations))

	_ = file.SetColWidth(summarySheet, "A", "A", 28)
	_ = file.SetColWidth(summarySheet, "B", "B", 40)
}

func writeInventorySummary(set func(string, interface{}), row int, s inventory.Summary) {
	rows := []struct {
		label string
		value interface{}
	}{
		{"Allocations", s.Allocations},
		{"Freesale", s.Freesale},
		{"Sold out", s.SoldOut},
		{"Quantity", s.Quantity},
		{"Booked", s.Booked},
		{"Held", s.Held},
		{"Available", s.Available},
		{"Utilization, %", fmt.Sprintf("%.1f", s.Utilization)},
	}
	for i, r := range rows {
		set(fmt.Sprintf("A%d", row+i), r.label)
		set(fmt.Sprintf("B%d", row+i), r.value)
	}
}

func (g *Generator) writeAllocations(file *excelize.File, allocs []model.ContractAllocation, contracts map[uuid.UUID]string) error {
	if _, err := file.NewSheet(allocationsSheet); err != nil {
		return err
	}
	set := setter(file, allocationsSheet)
	writeHeader(set, []string{
		"Contract", "Product", "Type", "Start", "End", "Quantity",
		"Booked", "Held", "Available", "Status", "Utilization, %", "Release on",
	})

	for i, a := range allocs {
		v := inventory.NewView(a)
		row := i + 2
		set(cell(1, row), contracts[a.ContractID])
		set(cell(2, row), a.ProductName)
		set(cell(3, row), string(a.AllocationType))
		set(cell(4, row), formatDate(a.StartDate))
		set(cell(5, row), formatDate(a.EndDate))
		set(cell(6, row), formatOptionalInt(a.Quantity))
		set(cell(7, row), a.Booked)
		set(cell(8, row), a.Held)
		set(cell(9, row), formatOptionalInt(v.Available))
		set(cell(10, row), string(v.Status))
		set(cell(11, row), fmt.Sprintf("%.1f", v.Utilization))
		set(cell(12, row), formatOptionalString(v.ReleaseOn))
	}

	_ = file.SetColWidth(allocationsSheet, "A", "B", 32)
	_ = file.SetColWidth(allocationsSheet, "C", "L", 14)
	return nil
}

func (g *Generator) writeWarnings(file *excelize.File, warnings []inventory.ReleaseWarning, contracts map[uuid.UUID]string) error {
	if _, err := file.NewSheet(warningsSheet); err != nil {
		return err
	}
	set := setter(file, warningsSheet)
	writeHeader(set, []string{"Urgency", "Release date", "Days until", "Contract", "Product", "Start", "Unsold"})

	for i, w := range warnings {
		row := i + 2
		set(cell(1, row), string(w.Urgency))
		set(cell(2, row), formatDate(w.ReleaseDate))
		set(cell(3, row), w.DaysUntil)
		set(cell(4, row), contracts[w.Allocation.ContractID])
		set(cell(5, row), w.Allocation.ProductName)
		set(cell(6, row), formatDate(w.Allocation.StartDate))
		set(cell(7, row), w.Unsold)
	}

	_ = file.SetColWidth(warningsSheet, "A", "C", 14)
	_ = file.SetColWidth(warningsSheet, "D", "E", 32)
	_ = file.SetColWidth(warningsSheet, "F", "G", 12)
	return nil
}

func (g *Generator) writeDeadlines(file *excelize.File, deadlines []model.ContractDeadline, now time.Time) error {
	if _, err := file.NewSheet(deadlinesSheet); err != nil {
		return err
	}
	set := setter(file, deadlinesSheet)
	writeHeader(set, []string{"Title", "Type", "Date", "Status", "Overdue", "Completed at"})

	for i, d := range deadlines {
		row := i + 2
		set(cell(1, row), d.Title)
		set(cell(2, row), string(d.DeadlineType))
		set(cell(3, row), formatDate(d.DeadlineDate))
		set(cell(4, row), string(d.Status))
		overdue := "no"
		if d.IsOverdue(now) {
			overdue = "yes"
		}
		set(cell(5, row), overdue)
		if d.CompletedAt != nil {
			set(cell(6, row), formatDateTime(*d.CompletedAt))
		}
	}

	_ = file.SetColWidth(deadlinesSheet, "A", "A", 36)
	_ = file.SetColWidth(deadlinesSheet, "B", "F", 16)
	return nil
}

func setter(file *excelize.File, sheet string) func(string, interface{}) {
	return func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}
}

func writeHeader(set func(string, interface{}), headers []string) {
	for i, header := range headers {
		set(cell(i+1, 1), header)
	}
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatOptionalInt(value *int) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%d", *value)
}

func formatOptionalString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
