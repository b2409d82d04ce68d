package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tripdesk/supplier-contracts/internal/model"
)

type ExcelGenerator interface {
	GenerateContract(doc model.ContractDocument) ([]byte, error)
	GenerateReleaseReport(report model.ReleaseReport) ([]byte, error)
}

type PDFGenerator interface {
	Generate(doc model.ContractDocument) ([]byte, error)
}

type ExportService struct {
	contracts   ContractRepository
	deadlines   DeadlineRepository
	allocations AllocationRepository
	rates       RateRepository
	excel       ExcelGenerator
	pdf         PDFGenerator
	horizonDays int
	now         func() time.Time
}

func NewExportService(
	contracts ContractRepository,
	deadlines DeadlineRepository,
	allocations AllocationRepository,
	rates RateRepository,
	excel ExcelGenerator,
	pdf PDFGenerator,
	horizonDays int,
) *ExportService {
	return &ExportService{
		contracts:   contracts,
		deadlines:   deadlines,
		allocations: allocations,
		rates:       rates,
		excel:       excel,
		pdf:         pdf,
		horizonDays: horizonDays,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func (s *ExportService) ContractWorkbook(ctx context.Context, contractID uuid.UUID) (*ExportResult, error) {
	doc, err := s.loadDocument(ctx, contractID)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.GenerateContract(*doc)
	if err != nil {
		return nil, err
	}
	return &ExportResult{FileName: contractFileName(*doc, "xlsx"), Content: content}, nil
}

func (s *ExportService) ContractPDF(ctx context.Context, contractID uuid.UUID) (*ExportResult, error) {
	doc, err := s.loadDocument(ctx, contractID)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Generate(*doc)
	if err != nil {
		return nil, err
	}
	return &ExportResult{FileName: contractFileName(*doc, "pdf"), Content: content}, nil
}

// ReleaseWorkbook exports the release position of every active contract.
func (s *ExportService) ReleaseWorkbook(ctx context.Context) (*ExportResult, error) {
	now := s.now()
	report := model.ReleaseReport{GeneratedAt: now, HorizonDays: s.horizonDays}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		contracts, err := s.contracts.List(gctx, model.ContractFilter{}, model.PageRequest{})
		report.Contracts = contracts
		return err
	})
	g.Go(func() error {
		allocations, err := s.allocations.List(gctx, model.AllocationFilter{}, model.PageRequest{})
		report.Allocations = allocations
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	content, err := s.excel.GenerateReleaseReport(report)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: fmt.Sprintf("release-report-%s.xlsx", now.Format("20060102")),
		Content:  content,
	}, nil
}

func (s *ExportService) loadDocument(ctx context.Context, contractID uuid.UUID) (*model.ContractDocument, error) {
	contract, err := s.contracts.Get(ctx, contractID)
	if err != nil {
		return nil, translate(err)
	}
	doc := &model.ContractDocument{
		Contract:    *contract,
		GeneratedAt: s.now(),
		HorizonDays: s.horizonDays,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.deadlines.List(gctx, model.DeadlineFilter{ContractID: &contractID}, doc.GeneratedAt, model.PageRequest{})
		doc.Deadlines = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.allocations.List(gctx, model.AllocationFilter{ContractID: &contractID}, model.PageRequest{})
		doc.Allocations = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.rates.List(gctx, model.RateFilter{ContractID: contractID}, model.PageRequest{})
		doc.Rates = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return doc, nil
}

func contractFileName(doc model.ContractDocument, ext string) string {
	number := sanitizeFileName(doc.Contract.ContractNumber)
	if number == "" {
		number = doc.Contract.ID.String()
	}
	return fmt.Sprintf("contract-%s-%s.%s", number, doc.GeneratedAt.Format("20060102"), ext)
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
