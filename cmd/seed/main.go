package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/billkhata/api/internal/billing"
	"github.com/billkhata/api/internal/config"
	"github.com/billkhata/api/internal/enum"
	"github.com/billkhata/api/internal/shop"
	"github.com/billkhata/api/internal/store"
	"github.com/billkhata/api/internal/store/postgres"
)

// Seeds demo bills into history so the dashboard has something to show.
// Bills are spread over the last N days across both shops.

var demoCustomers = []struct {
	name  string
	phone string
}{
	{"Rahul Sharma", "9876543210"},
	{"Priya Patel", "9123456780"},
	{"Amit Verma", "9988776655"},
	{"Sneha Gupta", "9871234560"},
}

var demoItems = map[shop.ID][]billing.LineItem{
	shop.Kapish: {
		{Name: "Photo Frame 8x10", Quantity: 1, Price: decimal.NewFromInt(350)},
		{Name: "Collage Frame", Quantity: 1, Price: decimal.NewFromInt(750)},
		{Name: "Lamination", Quantity: 2, Price: decimal.NewFromInt(60)},
	},
	shop.Sunny: {
		{Name: "Watch Battery", Quantity: 1, Price: decimal.NewFromInt(120)},
		{Name: "Leather Strap", Quantity: 1, Price: decimal.NewFromInt(450)},
		{Name: "Wall Clock", Quantity: 1, Price: decimal.NewFromInt(899)},
	},
}

func main() {
	count := flag.Int("count", 20, "Number of demo bills to create")
	days := flag.Int("days", 14, "Spread bills over this many past days")
	flag.Parse()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required; the in-memory store has nothing to seed")
	}

	ctx := context.Background()
	pg, err := postgres.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pg.Close()

	bills := store.NewBills(pg)
	loc := config.Load().Location()
	shops := shop.All()
	modes := []string{enum.PaymentModeCash, enum.PaymentModeUPI}

	for i := 0; i < *count; i++ {
		s := shops[rand.Intn(len(shops))]
		customer := demoCustomers[rand.Intn(len(demoCustomers))]

		pool := demoItems[s.ID]
		items := []billing.LineItem{pool[rand.Intn(len(pool))]}
		if rand.Intn(2) == 0 {
			items = append(items, pool[rand.Intn(len(pool))])
		}

		createdAt := time.Now().In(loc).
			AddDate(0, 0, -rand.Intn(*days)).
			Add(-time.Duration(rand.Intn(10)) * time.Hour)

		bill, err := billing.Create(s, customer.name, customer.phone, items, createdAt)
		if err != nil {
			log.Fatalf("Failed to build demo bill: %v", err)
		}
		paid, err := billing.Finalize(bill, modes[rand.Intn(len(modes))])
		if err != nil {
			log.Fatalf("Failed to finalize demo bill: %v", err)
		}

		if err := bills.PrependBill(ctx, paid); err != nil {
			log.Fatalf("Failed to store demo bill: %v", err)
		}
	}

	log.Printf("Seeded %d demo bills over the last %d days", *count, *days)
}
