package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/minhvo/tiemao-backend/config"
	"github.com/minhvo/tiemao-backend/internal/app/model"
	"github.com/minhvo/tiemao-backend/internal/app/repository"
	"github.com/minhvo/tiemao-backend/internal/db"
)

// Seeds the catalog. Without arguments the built-in starter catalog is
// inserted; with an XLSX path the products come from the sheet instead.
//
//	go run cmd/seed/main.go [xlsx_file_path]
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

	var products []model.Product
	if len(os.Args) > 1 {
		filePath := os.Args[1]
		fmt.Printf("Reading XLSX file: %s\n", filePath)
		products, err = readProductsFromXLSX(filePath)
		if err != nil {
			log.Fatal("Failed to read XLSX:", err)
		}
	} else {
		products = make([]model.Product, len(db.SampleProducts))
		copy(products, db.SampleProducts)
		fmt.Println("No XLSX given, using the built-in starter catalog")
	}

	fmt.Printf("Total products to import: %d\n", len(products))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	productRepo := repository.NewProductRepository(db.GetDB())

	imported := 0
	for i := range products {
		if err := productRepo.Create(&products[i]); err != nil {
			fmt.Printf("Skipping %q: %v\n", products[i].Title, err)
			continue
		}
		imported++
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", imported)
}

// readProductsFromXLSX expects the columns title, description, price, image,
// stock, category with a header row.
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

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var products []model.Product
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}
		if len(row) < 3 {
			skipped++
			continue
		}

		title := strings.TrimSpace(row[0])
		price, err := strconv.ParseInt(strings.TrimSpace(row[2]), 10, 64)
		if title == "" || err != nil || price < 0 {
			skipped++
			continue
		}

		product := model.Product{
			Title:       title,
			Description: strings.TrimSpace(row[1]),
			Price:       price,
		}
		if len(row) > 3 {
			if image := strings.TrimSpace(row[3]); image != "" {
				product.SetImages([]string{image})
			}
		}
		if len(row) > 4 {
			if stock, err := strconv.Atoi(strings.TrimSpace(row[4])); err == nil {
				product.Stock = stock
			}
		}
		if len(row) > 5 {
			product.Category = strings.TrimSpace(row[5])
		}

		products = append(products, product)
	}

	if skipped > 0 {
		fmt.Printf("Skipped %d invalid rows\n", skipped)
	}

	return products, nil
}
