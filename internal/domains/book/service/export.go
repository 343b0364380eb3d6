package service

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"bookstore-api/internal/domains/book/model"
)

const exportSheet = "Books"

var exportHeaders = []string{
	"ID",
	"Title",
	"Author",
	"ISBN",
	"Genre",
	"Price",
	"Stock",
	"In Stock",
	"Pages",
	"Published Date",
	"Created At",
}

func (s *BookService) ExportBooks(ctx context.Context, filter model.BookFilter) ([]byte, error) {
	filter.Offset = 0
	filter.Limit = 0

	books, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	rows, err := s.expand(ctx, books)
	if err != nil {
		return nil, err
	}

	f, err := buildBooksExcelFile(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to build excel file: %w", err)
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func buildBooksExcelFile(books []*model.BookResponse) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, err
	}

	for colIdx, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		f.SetCellValue(exportSheet, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
		f.SetCellStyle(exportSheet, "A1", last, headerStyle)
	}

	for i, b := range books {
		rowNum := i + 2
		cell := func(col int) string {
			name, _ := excelize.CoordinatesToCellName(col, rowNum)
			return name
		}

		f.SetCellValue(exportSheet, cell(1), b.ID.String())
		f.SetCellValue(exportSheet, cell(2), b.Title)
		f.SetCellValue(exportSheet, cell(3), b.Author.Name)
		f.SetCellValue(exportSheet, cell(4), b.ISBN)
		f.SetCellValue(exportSheet, cell(5), string(b.Genre))
		f.SetCellValue(exportSheet, cell(6), b.Price.InexactFloat64())
		f.SetCellValue(exportSheet, cell(7), b.Stock)
		f.SetCellValue(exportSheet, cell(8), b.InStock)
		if b.Pages != nil {
			f.SetCellValue(exportSheet, cell(9), *b.Pages)
		}
		if b.PublishedDate != nil {
			f.SetCellValue(exportSheet, cell(10), b.PublishedDate.String())
		}
		f.SetCellValue(exportSheet, cell(11), b.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return f, nil
}
