// Command manage-plans seeds and inspects the subscription_plans table.
//
// Usage:
//
//	manage-plans seed
//	manage-plans list
//	manage-plans set-price <tier> <stripe_price_id>
package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/aivahq/aiva-backend/internal/entitlement"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	switch os.Args[1] {
	case "seed":
		seed(conn)
	case "list":
		list(conn)
	case "set-price":
		if len(os.Args) != 4 {
			usage()
		}
		setPrice(conn, os.Args[2], os.Args[3])
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: manage-plans seed | list | set-price <tier> <stripe_price_id>")
	os.Exit(2)
}

func seed(conn *sql.DB) {
	for _, plan := range entitlement.Plans() {
		features, err := json.Marshal(plan.Features)
		if err != nil {
			log.Fatalf("marshal features for %s: %v", plan.Tier, err)
		}
		_, err = conn.Exec(`
			INSERT INTO public.subscription_plans (tier, name, price_usd, description, features, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			ON CONFLICT (tier) DO UPDATE SET
				name = EXCLUDED.name,
				price_usd = EXCLUDED.price_usd,
				description = EXCLUDED.description,
				features = EXCLUDED.features,
				updated_at = NOW()`,
			string(plan.Tier), plan.Name, plan.Price, plan.Description, features)
		if err != nil {
			log.Fatalf("seed plan %s: %v", plan.Tier, err)
		}
		log.Printf("[ManagePlans] seeded tier=%s price=$%d/mo", plan.Tier, plan.Price)
	}
}

func list(conn *sql.DB) {
	rows, err := conn.Query(`
		SELECT tier, name, price_usd, COALESCE(stripe_price_id, ''), updated_at
		FROM public.subscription_plans ORDER BY price_usd ASC`)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tier, name, priceID string
		var price int
		var updatedAt sql.NullTime
		if err := rows.Scan(&tier, &name, &price, &priceID, &updatedAt); err != nil {
			log.Fatalf("scan plan: %v", err)
		}
		fmt.Printf("%-14s %-14s $%-4d stripe_price=%s\n", tier, name, price, priceID)
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("list plans: %v", err)
	}
}

func setPrice(conn *sql.DB, tier, priceID string) {
	res, err := conn.Exec(`
		UPDATE public.subscription_plans SET stripe_price_id = $2, updated_at = NOW() WHERE tier = $1`,
		tier, priceID)
	if err != nil {
		log.Fatalf("set price: %v", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		log.Fatalf("no plan with tier %q, run seed first", tier)
	}
	log.Printf("[ManagePlans] set tier=%s stripe_price=%s", tier, priceID)
}
