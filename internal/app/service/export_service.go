package service

import (
	"fmt"

	"github.com/dimaspr/belimart-backend/internal/app/repository"
	"github.com/dimaspr/belimart-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// ExportService builds XLSX reports for the admin dashboard
type ExportService interface {
	ExportProducts() (*excelize.File, error)
	ExportTransactions() (*excelize.File, error)
}

type exportService struct {
	productRepo     repository.ProductRepository
	transactionRepo repository.TransactionRepository
	userRepo        repository.UserRepository
}

func NewExportService(
	productRepo repository.ProductRepository,
	transactionRepo repository.TransactionRepository,
	userRepo repository.UserRepository,
) ExportService {
	return &exportService{
		productRepo:     productRepo,
		transactionRepo: transactionRepo,
		userRepo:        userRepo,
	}
}

func (s *exportService) ExportProducts() (*excelize.File, error) {
	logger.Info("Exporting products to XLSX", nil)

	products, err := s.productRepo.FindAll()
	if err != nil {
		logger.Error("Failed to fetch products for export", err, nil)
		return nil, err
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{"ID", "Name", "Description", "Price", "Stock", "Image URL", "Created At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, p := range products {
		values := []interface{}{
			p.ID,
			p.Name,
			p.Description,
			p.Price,
			p.Stock,
			p.ImageURL,
			p.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	logger.Info("Products exported successfully", map[string]interface{}{
		"count": len(products),
	})
	return f, nil
}

func (s *exportService) ExportTransactions() (*excelize.File, error) {
	logger.Info("Exporting transactions to XLSX", nil)

	transactions, err := s.transactionRepo.FindAll()
	if err != nil {
		logger.Error("Failed to fetch transactions for export", err, nil)
		return nil, err
	}

	users, err := s.userRepo.FindAll()
	if err != nil {
		logger.Error("Failed to fetch users for export", err, nil)
		return nil, err
	}
	emailByID := make(map[uint]string, len(users))
	for _, u := range users {
		emailByID[u.ID] = u.Email
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{"ID", "User ID", "User Email", "Cart ID", "Total Price", "Loyalty Points Earned", "Created At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, t := range transactions {
		values := []interface{}{
			t.ID,
			t.UserID,
			emailByID[t.UserID],
			t.CartID,
			t.TotalPrice,
			t.LoyaltyPointEarned,
			t.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	logger.Info("Transactions exported successfully", map[string]interface{}{
		"count": len(transactions),
	})
	return f, nil
}
