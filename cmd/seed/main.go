package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/dimaspr/belimart-backend/config"
	"github.com/dimaspr/belimart-backend/internal/app/model"
	"github.com/dimaspr/belimart-backend/internal/app/repository"
	"github.com/dimaspr/belimart-backend/internal/db"
	"github.com/dimaspr/belimart-backend/pkg/util"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Seeds the admin account and the product catalog. With an XLSX path the
// catalog is imported from the file; without one a small sample set is used.
//
// Usage: go run cmd/seed/main.go [products.xlsx]
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())

	if err := seedAdmin(userRepo, cfg.Admin.Email); err != nil {
		log.Fatal("Failed to seed admin user:", err)
	}

	var products []model.Product
	if len(os.Args) > 1 {
		filePath := os.Args[1]
		fmt.Printf("Reading XLSX file: %s\n", filePath)
		products, err = readProductsFromXLSX(filePath)
		if err != nil {
			log.Fatal("Failed to read XLSX:", err)
		}
	} else {
		products = sampleProducts()
	}

	created := 0
	for i := range products {
		existing, err := productRepo.FindByName(products[i].Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatal("Failed to check existing product:", err)
		}
		if existing != nil {
			continue
		}
		if err := productRepo.Create(&products[i]); err != nil {
			log.Fatal("Failed to create product:", err)
		}
		created++
	}

	fmt.Printf("Seed completed: %d of %d products created\n", created, len(products))
}

func seedAdmin(userRepo repository.UserRepository, adminEmail string) error {
	existing, err := userRepo.FindByEmail(adminEmail)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil {
		fmt.Printf("Admin user already exists: %s\n", adminEmail)
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "changeme123"
		fmt.Println("ADMIN_PASSWORD not set, using default (change it after first login)")
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &model.User{
		FirstName:    "Store",
		LastName:     "Admin",
		Email:        adminEmail,
		Username:     "admin",
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	if err := userRepo.Create(admin); err != nil {
		return err
	}

	fmt.Printf("Admin user created: %s\n", adminEmail)
	return nil
}

func sampleProducts() []model.Product {
	return []model.Product{
		{Name: "Arabica Coffee Beans 500g", Description: "Single origin beans from Gayo highlands", Price: 95000, Stock: 40},
		{Name: "Green Tea Pack 100g", Description: "Loose leaf green tea", Price: 35000, Stock: 60},
		{Name: "Palm Sugar 1kg", Description: "Unrefined palm sugar blocks", Price: 28000, Stock: 80},
		{Name: "Coconut Oil 1L", Description: "Cold pressed virgin coconut oil", Price: 65000, Stock: 30},
		{Name: "Jasmine Rice 5kg", Description: "Premium fragrant rice", Price: 89000, Stock: 25},
	}
}

func readProductsFromXLSX(filePath string) ([]model.Product, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	// Expected columns: Name, Description, Price, Stock, Image URL
	var products []model.Product
	seen := make(map[string]bool)
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 4 {
			skipped++
			continue
		}

		name := strings.TrimSpace(row[0])
		description := strings.TrimSpace(row[1])
		priceStr := strings.TrimSpace(row[2])
		stockStr := strings.TrimSpace(row[3])
		imageURL := ""
		if len(row) > 4 {
			imageURL = strings.TrimSpace(row[4])
		}

		if name == "" || seen[name] {
			skipped++
			continue
		}

		price, errPrice := strconv.ParseFloat(priceStr, 64)
		stock, errStock := strconv.Atoi(stockStr)
		if errPrice != nil || errStock != nil || price < 0 || stock < 0 {
			skipped++
			continue
		}

		seen[name] = true
		products = append(products, model.Product{
			Name:        name,
			Description: description,
			Price:       price,
			Stock:       stock,
			ImageURL:    imageURL,
		})
	}

	fmt.Printf("Rows read: %d, valid products: %d, skipped: %d\n", len(rows)-1, len(products), skipped)
	return products, nil
}
