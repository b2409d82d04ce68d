package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripdesk/supplier-contracts/internal/inventory"
	"github.com/tripdesk/supplier-contracts/internal/model"
)

type recordingGenerator struct {
	doc    model.ContractDocument
	report model.ReleaseReport
	err    error
}

func (g *recordingGenerator) GenerateContract(doc model.ContractDocument) ([]byte, error) {
	g.doc = doc
	return []byte("xlsx"), g.err
}

func (g *recordingGenerator) GenerateReleaseReport(report model.ReleaseReport) ([]byte, error) {
	g.report = report
	return []byte("report"), g.err
}

func (g *recordingGenerator) Generate(doc model.ContractDocument) ([]byte, error) {
	g.doc = doc
	return []byte("%PDF-"), g.err
}

func newExportFixture() (*fixture, *recordingGenerator, *ExportService) {
	f := newFixture()
	f.contract.ContractNumber = "HC/2026 001"
	f.contracts = newFakeContracts(f.contract)
	f.deadlines = newFakeDeadlines(model.ContractDeadline{ContractID: f.contract.ID, Title: "pay", DeadlineType: model.DeadlineTypePayment, DeadlineDate: date(2026, 7, 1), Status: model.DeadlineStatusPending})
	f.addAllocation(model.ContractAllocation{ProductName: "A", StartDate: date(2026, 7, 1), EndDate: date(2026, 7, 3), Quantity: intPtr(4)})
	f.rates = newFakeRates(model.SupplierRate{ContractID: f.contract.ID, ProductName: "A", RatePlanName: "BAR", ValidFrom: date(2026, 6, 1), ValidTo: date(2026, 6, 30)})

	gen := &recordingGenerator{}
	svc := NewExportService(f.contracts, f.deadlines, f.allocations, f.rates, gen, gen, inventory.DefaultHorizonDays)
	svc.now = fixedNow
	return f, gen, svc
}

func TestExportContractWorkbook(t *testing.T) {
	f, gen, svc := newExportFixture()

	result, err := svc.ContractWorkbook(context.Background(), f.contract.ID)
	require.NoError(t, err)
	assert.Equal(t, "contract-HC-2026-001-20260610.xlsx", result.FileName)
	assert.Equal(t, []byte("xlsx"), result.Content)

	assert.Equal(t, f.contract.ID, gen.doc.Contract.ID)
	assert.Len(t, gen.doc.Deadlines, 1)
	assert.Len(t, gen.doc.Allocations, 1)
	assert.Len(t, gen.doc.Rates, 1)
	assert.Equal(t, inventory.DefaultHorizonDays, gen.doc.HorizonDays)
}

func TestExportContractPDF(t *testing.T) {
	f, _, svc := newExportFixture()

	result, err := svc.ContractPDF(context.Background(), f.contract.ID)
	require.NoError(t, err)
	assert.Equal(t, "contract-HC-2026-001-20260610.pdf", result.FileName)

	_, err = svc.ContractPDF(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExportReleaseWorkbook(t *testing.T) {
	_, gen, svc := newExportFixture()

	result, err := svc.ReleaseWorkbook(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "release-report-20260610.xlsx", result.FileName)
	assert.Len(t, gen.report.Contracts, 1)
	assert.Len(t, gen.report.Allocations, 1)
	assert.Equal(t, testNow, gen.report.GeneratedAt)
}

func TestExportGeneratorError(t *testing.T) {
	f, gen, svc := newExportFixture()
	gen.err = errors.New("render failed")

	_, err := svc.ContractWorkbook(context.Background(), f.contract.ID)
	assert.EqualError(t, err, "render failed")
}
