package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/minhvo/tiemao-backend/config"
	"github.com/minhvo/tiemao-backend/internal/app/repository"
	"github.com/minhvo/tiemao-backend/internal/db"
	"github.com/minhvo/tiemao-backend/pkg/images"
)

// Replaces missing or placeholder product images with real photos from
// picsum.photos, so a freshly seeded catalog does not look empty.
//
//	go run cmd/fetchimages/main.go [-dry-run] [-limit N]
func main() {
	dryRun := flag.Bool("dry-run", false, "report what would be fetched without downloading")
	limit := flag.Int("limit", 0, "stop after this many downloads (0 = no limit)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	productRepo := repository.NewProductRepository(db.GetDB())

	products, err := productRepo.FindAll(repository.ProductFilter{})
	if err != nil {
		log.Fatal("Failed to list products:", err)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	fetched := 0

	for i := range products {
		p := &products[i]
		if !images.IsPlaceholderPath(cfg.Assets.PublicDir, p.Image) {
			continue
		}

		if *dryRun {
			fmt.Printf("Would fetch image for #%d %q (current: %q)\n", p.ID, p.Title, p.Image)
			continue
		}

		name := fmt.Sprintf("product_%d.jpg", p.ID)
		dest := filepath.Join(cfg.Assets.UploadDir, name)

		// Seeding the URL with the product id keeps fetches repeatable.
		url := fmt.Sprintf("https://picsum.photos/seed/%d/600/600", p.ID)
		if err := download(client, url, dest); err != nil {
			fmt.Printf("Failed to fetch image for #%d %q: %v\n", p.ID, p.Title, err)
			continue
		}

		p.SetImages([]string{"/images/" + name})
		if err := productRepo.Update(p); err != nil {
			fmt.Printf("Failed to update product #%d: %v\n", p.ID, err)
			continue
		}

		fmt.Printf("Fetched image for #%d %q -> %s\n", p.ID, p.Title, name)
		fetched++
		if *limit > 0 && fetched >= *limit {
			break
		}
	}

	fmt.Printf("Done. Fetched %d images.\n", fetched)
}

func download(client *http.Client, url, dest string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, resp.Body)
	return err
}
