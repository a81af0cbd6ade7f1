// Command address-import loads the region/province/city/barangay hierarchy from a JSON file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"structura-api/config"
	"structura-api/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var (
		path   string
		dryRun bool
	)
	flag.StringVar(&path, "file", "", "path to the address JSON file (required)")
	flag.BoolVar(&dryRun, "dry-run", false, "validate and count entries without writing to the database")
	flag.Parse()

	if path == "" {
		log.Fatal("-file is required")
	}

	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	file, err := services.ParseAddressFile(f)
	if err != nil {
		log.Fatalf("address file invalid: %v", err)
	}

	var summary services.AddressImportSummary
	if dryRun {
		summary = file.Count()
	} else {
		config.InitDB()
		summary, err = services.NewAddressImportService(nil).Import(context.Background(), file)
		if err != nil {
			log.Fatalf("address import failed: %v", err)
		}
	}

	fmt.Printf("Regions: %d, provinces: %d, cities: %d, barangays: %d\n",
		summary.Regions,
		summary.Provinces,
		summary.Cities,
		summary.Barangays,
	)
	if dryRun {
		fmt.Println("Dry run complete. No database changes were made.")
	}
}
