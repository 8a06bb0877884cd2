package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/arlohq/salon_backend/config"
	"github.com/arlohq/salon_backend/models"
	"github.com/arlohq/salon_backend/utils"
	"gorm.io/gorm"
)

// Rebuilds daily_sales_summaries from sales_transactions for a date range.
// The summary table is derived data; this tool exists for schema changes,
// historical corrections, and recovery after a bad sync run.
func main() {
	from := flag.String("from", "", "Optional: start date (YYYY-MM-DD). Defaults to 30 days ago.")
	to := flag.String("to", "", "Optional: end date (YYYY-MM-DD). Defaults to today (UTC).")
	flag.Parse()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}

	// Ensure schema is up-to-date (creates daily_sales_summaries if missing).
	models.MigrateTable()

	start := strings.TrimSpace(*from)
	if start == "" {
		start = utils.FormatDate(time.Now().UTC().AddDate(0, 0, -30))
	}
	end := strings.TrimSpace(*to)
	if end == "" {
		end = utils.FormatDate(time.Now().UTC())
	}
	if _, err := utils.ParseDate(start); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -from date %q: %v\n", start, err)
		os.Exit(1)
	}
	if _, err := utils.ParseDate(end); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -to date %q: %v\n", end, err)
		os.Exit(1)
	}

	fmt.Printf("Backfilling daily_sales_summaries from=%s to=%s\n", start, end)

	if err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Upsert summaries from raw transactions. Rows without a resolved
		// stylist stay out of the rollup; total_transactions counts
		// purchases, not line items.
		if err := tx.Exec(`
			INSERT INTO daily_sales_summaries (user_id, location_id, summary_date,
				total_services, total_products, service_revenue, product_revenue,
				total_revenue, total_transactions, total_discounts, average_ticket,
				created_at, updated_at)
			SELECT
				st.stylist_id,
				COALESCE(st.location_id, 0),
				st.transaction_date,
				COALESCE(SUM(CASE WHEN st.item_type = 'service' THEN st.quantity ELSE 0 END), 0),
				COALESCE(SUM(CASE WHEN st.item_type = 'product' THEN st.quantity ELSE 0 END), 0),
				COALESCE(SUM(CASE WHEN st.item_type = 'service' THEN st.total_amount ELSE 0 END), 0),
				COALESCE(SUM(CASE WHEN st.item_type = 'product' THEN st.total_amount ELSE 0 END), 0),
				COALESCE(SUM(st.total_amount), 0),
				COUNT(DISTINCT st.purchase_id),
				COALESCE(SUM(st.discount), 0),
				ROUND(COALESCE(SUM(st.total_amount), 0) / COUNT(DISTINCT st.purchase_id), 4),
				NOW(),
				NOW()
			FROM sales_transactions st
			WHERE
				st.stylist_id IS NOT NULL
				AND st.transaction_date BETWEEN ? AND ?
			GROUP BY
				st.stylist_id, COALESCE(st.location_id, 0), st.transaction_date
			ON DUPLICATE KEY UPDATE
				total_services = VALUES(total_services),
				total_products = VALUES(total_products),
				service_revenue = VALUES(service_revenue),
				product_revenue = VALUES(product_revenue),
				total_revenue = VALUES(total_revenue),
				total_transactions = VALUES(total_transactions),
				total_discounts = VALUES(total_discounts),
				average_ticket = VALUES(average_ticket),
				updated_at = NOW()
		`, start, end).Error; err != nil {
			return err
		}

		// Delete stale rows (buckets with no remaining transactions in range).
		return tx.Exec(`
			DELETE ds
			FROM daily_sales_summaries ds
			LEFT JOIN (
				SELECT
					st.stylist_id AS user_id,
					COALESCE(st.location_id, 0) AS location_id,
					st.transaction_date
				FROM sales_transactions st
				WHERE
					st.stylist_id IS NOT NULL
					AND st.transaction_date BETWEEN ? AND ?
				GROUP BY
					st.stylist_id, COALESCE(st.location_id, 0), st.transaction_date
			) agg
				ON agg.user_id = ds.user_id
				AND agg.location_id = ds.location_id
				AND agg.transaction_date = ds.summary_date
			WHERE
				ds.summary_date BETWEEN ? AND ?
				AND agg.transaction_date IS NULL
		`, start, end, start, end).Error
	}); err != nil {
		fmt.Fprintf(os.Stderr, "backfill failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Backfill complete")
}
