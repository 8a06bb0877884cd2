package phorestsync

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/arlohq/salon_backend/config"
	"github.com/arlohq/salon_backend/models"
	"github.com/arlohq/salon_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var salesUpdateColumns = []string{
	"stylist_id", "external_staff_id", "branch_id", "branch_name", "location_id",
	"transaction_date", "transaction_time", "client_name", "client_phone",
	"item_type", "item_category", "quantity", "unit_price", "discount", "tax",
	"total_amount", "payment_method", "updated_at",
}

var summaryUpdateColumns = []string{
	"total_services", "total_products", "service_revenue", "product_revenue",
	"total_revenue", "total_transactions", "total_discounts", "average_ticket",
	"updated_at",
}

// summaryKey buckets line items per stylist, location and calendar day.
// locationId is 0 when the branch matched no internal location.
type summaryKey struct {
	userId     int
	locationId int
	date       time.Time
}

type summaryBucket struct {
	services       int
	products       int
	serviceRevenue decimal.Decimal
	productRevenue decimal.Decimal
	totalRevenue   decimal.Decimal
	discounts      decimal.Decimal
	transactions   int
}

// SyncSales pulls purchases per branch for [from, to], explodes each purchase
// into one transaction row per line item (or one synthesized row when the
// purchase carries no items, so no purchase drops out of revenue accounting),
// and rebuilds daily per-stylist summaries for the buckets it touched.
//
// Only rows whose upsert succeeded and whose stylist id resolved feed the
// summaries, which keeps summary revenue equal to the sum of the stored
// transaction rows for that stylist, location and day.
func SyncSales(ctx context.Context, db *gorm.DB, client *Client, from time.Time, to time.Time) (SalesSyncResult, error) {
	logger := config.GetLogger()

	branches, err := fetchBranches(ctx, client)
	if err != nil {
		return SalesSyncResult{}, err
	}
	locations, err := models.GetLocationIdsByName(ctx, db)
	if err != nil {
		return SalesSyncResult{}, err
	}
	mappings, err := models.GetStaffMappings(ctx, db)
	if err != nil {
		return SalesSyncResult{}, err
	}

	params := url.Values{}
	params.Set("from_date", utils.FormatDate(from))
	params.Set("to_date", utils.FormatDate(to))

	result := SalesSyncResult{}
	buckets := map[summaryKey]*summaryBucket{}

	for _, branch := range branches {
		items, err := client.GetList(ctx, "/branch/"+branch.ExternalId()+"/purchase", params, "purchases", "purchase", "transactions")
		if err != nil {
			config.LogError(logger, "phorestsync", "SyncSales", "purchase fetch failed for branch", branch.Name, err)
			continue
		}

		var locationId *int
		if id, ok := locations[strings.ToLower(strings.TrimSpace(branch.Name))]; ok {
			locationId = &id
		}

		for _, raw := range items {
			var purchase phorestPurchase
			if err := json.Unmarshal(raw, &purchase); err != nil {
				config.LogError(logger, "phorestsync", "SyncSales", "invalid purchase payload", branch.Name, err)
				continue
			}
			if purchase.ExternalId() == "" {
				continue
			}

			var stylistId *int
			if userId, ok := mappings[strings.TrimSpace(purchase.StaffId)]; ok {
				stylistId = &userId
			}
			txDate := parseDateOr(purchase.Date, from)

			rows := explodePurchase(purchase, branch, stylistId, locationId, txDate)
			result.Total += len(rows)

			// A purchase counts once toward its bucket's transaction total no
			// matter how many line items it carries.
			countedPurchase := false
			for i := range rows {
				err := db.WithContext(ctx).Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "purchase_id"}, {Name: "item_name"}},
					DoUpdates: clause.AssignmentColumns(salesUpdateColumns),
				}).Create(&rows[i]).Error
				if err != nil {
					config.LogError(logger, "phorestsync", "SyncSales", "transaction upsert failed", rows[i].PurchaseId, err)
					continue
				}
				result.Synced++

				if stylistId == nil {
					continue
				}
				key := summaryKey{userId: *stylistId, locationId: summaryLocationId(locationId), date: txDate}
				bucket, ok := buckets[key]
				if !ok {
					bucket = &summaryBucket{}
					buckets[key] = bucket
				}
				if rows[i].ItemType == "product" {
					bucket.products += rows[i].Quantity
					bucket.productRevenue = bucket.productRevenue.Add(rows[i].TotalAmount)
				} else {
					bucket.services += rows[i].Quantity
					bucket.serviceRevenue = bucket.serviceRevenue.Add(rows[i].TotalAmount)
				}
				bucket.totalRevenue = bucket.totalRevenue.Add(rows[i].TotalAmount)
				bucket.discounts = bucket.discounts.Add(rows[i].Discount)
				if !countedPurchase {
					bucket.transactions++
					countedPurchase = true
				}
			}
		}
	}

	for key, bucket := range buckets {
		averageTicket := decimal.Zero
		if bucket.transactions > 0 {
			averageTicket = bucket.totalRevenue.Div(decimal.NewFromInt(int64(bucket.transactions))).Round(4)
		}
		summary := models.DailySalesSummary{
			UserId:            key.userId,
			LocationId:        key.locationId,
			SummaryDate:       key.date,
			TotalServices:     bucket.services,
			TotalProducts:     bucket.products,
			ServiceRevenue:    bucket.serviceRevenue,
			ProductRevenue:    bucket.productRevenue,
			TotalRevenue:      bucket.totalRevenue,
			TotalTransactions: bucket.transactions,
			TotalDiscounts:    bucket.discounts,
			AverageTicket:     averageTicket,
		}
		err := db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "location_id"}, {Name: "summary_date"}},
			DoUpdates: clause.AssignmentColumns(summaryUpdateColumns),
		}).Create(&summary).Error
		if err != nil {
			config.LogError(logger, "phorestsync", "SyncSales", "summary upsert failed", key.userId, err)
			continue
		}
		result.Summaries++
	}

	return result, nil
}

// explodePurchase flattens a purchase into transaction rows, one per line
// item. A purchase without items still produces one whole-purchase row so its
// revenue is not lost.
func explodePurchase(purchase phorestPurchase, branch phorestBranch, stylistId *int, locationId *int, txDate time.Time) []models.SalesTransaction {
	base := models.SalesTransaction{
		PurchaseId:      purchase.ExternalId(),
		StylistId:       stylistId,
		ExternalStaffId: strings.TrimSpace(purchase.StaffId),
		BranchId:        branch.ExternalId(),
		BranchName:      branch.Name,
		LocationId:      locationId,
		TransactionDate: txDate,
		TransactionTime: strings.TrimSpace(purchase.Time),
		ClientName:      strings.TrimSpace(purchase.ClientName),
		ClientPhone:     strings.TrimSpace(purchase.ClientPhone),
		PaymentMethod:   strings.TrimSpace(purchase.PaymentMethod),
	}

	if len(purchase.Items) == 0 {
		row := base
		row.ItemName = "Service"
		row.ItemType = "service"
		row.Quantity = 1
		row.UnitPrice = decimalFromNumber(purchase.TotalAmount)
		row.Discount = decimalFromNumber(purchase.Discount)
		row.Tax = decimalFromNumber(purchase.Tax)
		row.TotalAmount = decimalFromNumber(purchase.TotalAmount)
		return []models.SalesTransaction{row}
	}

	rows := make([]models.SalesTransaction, 0, len(purchase.Items))
	for _, item := range purchase.Items {
		row := base
		row.ItemName = strings.TrimSpace(item.Name)
		if row.ItemName == "" {
			row.ItemName = "Service"
		}
		row.ItemType = classifyItemType(item)
		row.ItemCategory = strings.TrimSpace(item.Category)
		row.Quantity = intFromNumber(item.Quantity)
		if row.Quantity <= 0 {
			row.Quantity = 1
		}
		row.UnitPrice = decimalFromNumber(item.UnitPrice)
		row.Discount = decimalFromNumber(item.Discount)
		row.Tax = decimalFromNumber(item.Tax)
		row.TotalAmount = decimalFromNumber(item.TotalAmount)
		rows = append(rows, row)
	}
	return rows
}

// classifyItemType trusts an explicit type field and otherwise infers
// "product" from the presence of a product id.
func classifyItemType(item phorestPurchaseItem) string {
	switch strings.ToLower(strings.TrimSpace(item.Type)) {
	case "product":
		return "product"
	case "service":
		return "service"
	}
	if strings.TrimSpace(item.ProductId) != "" {
		return "product"
	}
	return "service"
}

func summaryLocationId(locationId *int) int {
	if locationId == nil {
		return 0
	}
	return *locationId
}
