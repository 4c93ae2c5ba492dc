package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/xavierca1/kiwipay-leads/internal/usecase"
	"github.com/xuri/excelize/v2"
)

// Layout da planilha de referência (índices base 0).
const (
	clinicSheet    = 1
	specialtySheet = 2
	firstDataRow   = 2

	clinicNameCol        = 1 // B
	clinicAddressCol     = 8 // I
	specialtyCategoryCol = 2 // C
	specialtyNameCol     = 3 // D
)

// ExcelSource lê clínicas e especialidades de um .xlsx no disco.
type ExcelSource struct {
	Path string
}

func NewExcelSource(path string) *ExcelSource {
	return &ExcelSource{Path: path}
}

func (s *ExcelSource) Load(ctx context.Context) ([]usecase.ClinicSeedRow, []usecase.SpecialtySeedRow, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer f.Close()
	return readWorkbook(ctx, f)
}

func readWorkbook(ctx context.Context, f *excelize.File) ([]usecase.ClinicSeedRow, []usecase.SpecialtySeedRow, error) {
	sheets := f.GetSheetList()
	if len(sheets) <= specialtySheet {
		return nil, nil, fmt.Errorf("planilha precisa de %d abas, tem %d", specialtySheet+1, len(sheets))
	}

	clinicRows, err := f.GetRows(sheets[clinicSheet])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheets[clinicSheet], err)
	}
	var clinics []usecase.ClinicSeedRow
	for i := firstDataRow; i < len(clinicRows); i++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		name := cell(clinicRows[i], clinicNameCol)
		if name == "" {
			continue
		}
		clinics = append(clinics, usecase.ClinicSeedRow{
			Name:    name,
			Address: cell(clinicRows[i], clinicAddressCol),
		})
	}

	specialtyRows, err := f.GetRows(sheets[specialtySheet])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheets[specialtySheet], err)
	}
	var specialties []usecase.SpecialtySeedRow
	for i := firstDataRow; i < len(specialtyRows); i++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		name := cell(specialtyRows[i], specialtyNameCol)
		if name == "" {
			continue
		}
		specialties = append(specialties, usecase.SpecialtySeedRow{
			Category: cell(specialtyRows[i], specialtyCategoryCol),
			Name:     name,
		})
	}

	return clinics, specialties, nil
}

// GetRows corta células vazias no fim da linha.
func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
