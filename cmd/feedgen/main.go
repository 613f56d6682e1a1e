// Command feedgen writes a deterministic product feed in the upstream
// products.json shape. Point PRODUCTS_URL at a static file server hosting
// the output to exercise the catalogue against a large listing.
//
// Run: go run ./cmd/feedgen -n 10000 -o products.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"os"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/logger"
)

const defaultCount = 10000

type categoryDef struct {
	Name  string
	Kinds []string
	// Share of total products. The last category takes the remainder.
	Weight float64
}

var categories = []categoryDef{
	{Name: "men's clothing", Weight: 0.25, Kinds: []string{"Jacket", "Slim Fit T-Shirt", "Backpack", "Hoodie", "Chinos"}},
	{Name: "women's clothing", Weight: 0.30, Kinds: []string{"Raincoat", "Short Sleeve Top", "Moto Jacket", "Cardigan", "Maxi Dress"}},
	{Name: "jewelery", Weight: 0.20, Kinds: []string{"Chain Bracelet", "Solitaire Ring", "Stud Earrings", "Pendant"}},
	{Name: "electronics", Weight: 0.25, Kinds: []string{"Portable Hard Drive", "Internal SSD", "Gaming Monitor", "USB Flash Drive"}},
}

var prefixes = []string{"Classic", "Premium", "Everyday", "Vintage", "Urban", "Essential", "Deluxe", "Lightweight"}

var colors = []string{"Black", "White", "Navy", "Olive", "Burgundy", "Sand", "Silver", "Gold"}

var descriptionTemplates = []string{
	"A dependable %s built for daily use.",
	"This %s pairs a modern cut with durable materials.",
	"Our best selling %s, now in new colours.",
	"Comfortable %s that works for any occasion.",
}

func main() {
	count := flag.Int("n", defaultCount, "number of products to generate")
	out := flag.String("o", "", "output file (defaults to stdout)")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	log := logger.NewWithWriter("feedgen", "info", os.Stderr)

	if *count < 0 {
		log.Error("product count must not be negative", slog.Int("n", *count))
		os.Exit(1)
	}

	products := generate(rand.New(rand.NewSource(*seed)), *count)

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Error("failed to create output file", slog.String("path", *out), slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	if err := writeFeed(w, products); err != nil {
		log.Error("failed to write feed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("feed generated", slog.Int("products", len(products)), slog.String("output", *out))
}

// generate returns n products with ids 1..n spread over categories by weight.
func generate(rng *rand.Rand, n int) []domain.Product {
	products := make([]domain.Product, 0, n)

	remaining := n
	id := 1
	for i, cat := range categories {
		share := remaining
		if i < len(categories)-1 {
			share = int(float64(n) * cat.Weight)
			remaining -= share
		}
		for j := 0; j < share; j++ {
			kind := cat.Kinds[rng.Intn(len(cat.Kinds))]
			title := fmt.Sprintf("%s %s - %s",
				prefixes[rng.Intn(len(prefixes))], kind, colors[rng.Intn(len(colors))])

			// 5.00 - 999.99, two decimal places.
			price := math.Round((5+rng.Float64()*995)*100) / 100
			rate := math.Round((1+rng.Float64()*4)*10) / 10

			products = append(products, domain.Product{
				ID:          id,
				Title:       title,
				Price:       price,
				Description: fmt.Sprintf(descriptionTemplates[rng.Intn(len(descriptionTemplates))], kind),
				Category:    cat.Name,
				Image:       fmt.Sprintf("https://picsum.photos/seed/%d/400/400", id),
				Rating:      domain.Rating{Rate: rate, Count: rng.Intn(1000)},
			})
			id++
		}
	}
	return products
}

func writeFeed(w io.Writer, products []domain.Product) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(products); err != nil {
		return fmt.Errorf("encode products: %w", err)
	}
	return nil
}
