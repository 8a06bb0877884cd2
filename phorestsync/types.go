package phorestsync

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SyncRequest is the trigger payload, accepted both over HTTP and as the data
// of a Pub/Sub push message. An empty sync_type means "all".
type SyncRequest struct {
	SyncType string `json:"sync_type"`
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
	Quick    bool   `json:"quick"`
}

// ErrorPayload is the per-entity failure value in the combined sync result.
type ErrorPayload struct {
	Error string `json:"error"`
}

type UnmappedStaff struct {
	ExternalId string `json:"external_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

type StaffSyncResult struct {
	TotalStaff    int             `json:"total_staff"`
	Mapped        int             `json:"mapped"`
	Unmapped      int             `json:"unmapped"`
	UnmappedStaff []UnmappedStaff `json:"unmapped_staff"`
}

type AppointmentSyncResult struct {
	Synced int `json:"synced"`
	Total  int `json:"total"`
}

type ClientSyncResult struct {
	Synced int `json:"synced"`
	Total  int `json:"total"`
}

type ReportSyncResult struct {
	Synced    int    `json:"synced"`
	Skipped   int    `json:"skipped"`
	WeekStart string `json:"week_start"`
}

type SalesSyncResult struct {
	Synced    int `json:"synced"`
	Total     int `json:"total"`
	Summaries int `json:"summaries"`
}

type ConnectRequest struct {
	BusinessId string `json:"businessId"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

type StatusResponse struct {
	Status            string  `json:"status"`
	BusinessId        string  `json:"businessId"`
	LastSyncAt        *string `json:"lastSyncAt"`
	LastSuccessSyncAt *string `json:"lastSuccessSyncAt"`
}

type SyncLogResponse struct {
	ID            uint   `json:"id"`
	SyncType      string `json:"syncType"`
	Status        string `json:"status"`
	RecordsSynced int    `json:"recordsSynced"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
	CompletedAt   string `json:"completedAt"`
}

type PubSubPushEnvelope struct {
	Message struct {
		Data []byte `json:"data"`
		ID   string `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// --- external platform record shapes ---
//
// The platform is inconsistent about id field names across endpoints, so each
// record carries the candidates and resolves them with an accessor.

type phorestBranch struct {
	BranchId string `json:"branchId"`
	ID       string `json:"id"`
	Name     string `json:"name"`
}

func (b phorestBranch) ExternalId() string {
	if strings.TrimSpace(b.BranchId) != "" {
		return strings.TrimSpace(b.BranchId)
	}
	return strings.TrimSpace(b.ID)
}

type phorestStaff struct {
	StaffId   string `json:"staffId"`
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func (s phorestStaff) ExternalId() string {
	if strings.TrimSpace(s.StaffId) != "" {
		return strings.TrimSpace(s.StaffId)
	}
	return strings.TrimSpace(s.ID)
}

func (s phorestStaff) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(s.FirstName) + " " + strings.TrimSpace(s.LastName))
}

type phorestAppointment struct {
	AppointmentId   string      `json:"appointmentId"`
	ID              string      `json:"id"`
	StaffId         string      `json:"staffId"`
	ClientName      string      `json:"clientName"`
	ClientPhone     string      `json:"clientPhone"`
	Date            string      `json:"date"`
	StartTime       string      `json:"startTime"`
	EndTime         string      `json:"endTime"`
	ServiceName     string      `json:"serviceName"`
	ServiceCategory string      `json:"serviceCategory"`
	Status          string      `json:"status"`
	State           string      `json:"state"`
	TotalPrice      json.Number `json:"totalPrice"`
	Notes           string      `json:"notes"`
}

func (a phorestAppointment) ExternalId() string {
	if strings.TrimSpace(a.AppointmentId) != "" {
		return strings.TrimSpace(a.AppointmentId)
	}
	return strings.TrimSpace(a.ID)
}

func (a phorestAppointment) RawStatus() string {
	if strings.TrimSpace(a.Status) != "" {
		return a.Status
	}
	return a.State
}

type phorestClient struct {
	ClientId            string      `json:"clientId"`
	ID                  string      `json:"id"`
	FirstName           string      `json:"firstName"`
	LastName            string      `json:"lastName"`
	Email               string      `json:"email"`
	Phone               string      `json:"phone"`
	Mobile              string      `json:"mobile"`
	VisitCount          json.Number `json:"visitCount"`
	FirstVisitDate      string      `json:"firstVisitDate"`
	LastAppointmentDate string      `json:"lastAppointmentDate"`
	PreferredStaffId    string      `json:"preferredStaffId"`
	TotalSpend          json.Number `json:"totalSpend"`
	VIP                 bool        `json:"vip"`
	Notes               string      `json:"notes"`
}

func (c phorestClient) ExternalId() string {
	if strings.TrimSpace(c.ClientId) != "" {
		return strings.TrimSpace(c.ClientId)
	}
	return strings.TrimSpace(c.ID)
}

func (c phorestClient) PhoneNumber() string {
	if strings.TrimSpace(c.Phone) != "" {
		return strings.TrimSpace(c.Phone)
	}
	return strings.TrimSpace(c.Mobile)
}

type phorestPerformanceRow struct {
	StaffId          string      `json:"staffId"`
	NewClients       json.Number `json:"newClients"`
	RetentionRate    json.Number `json:"retentionRate"`
	RetailSales      json.Number `json:"retailSales"`
	ExtensionClients json.Number `json:"extensionClients"`
	TotalRevenue     json.Number `json:"totalRevenue"`
	ServiceCount     json.Number `json:"serviceCount"`
	AverageTicket    json.Number `json:"averageTicket"`
	RebookingRate    json.Number `json:"rebookingRate"`
}

type phorestPurchase struct {
	PurchaseId    string                `json:"purchaseId"`
	ID            string                `json:"id"`
	StaffId       string                `json:"staffId"`
	ClientName    string                `json:"clientName"`
	ClientPhone   string                `json:"clientPhone"`
	Date          string                `json:"purchaseDate"`
	Time          string                `json:"purchaseTime"`
	PaymentMethod string                `json:"paymentMethod"`
	TotalAmount   json.Number           `json:"totalAmount"`
	Discount      json.Number           `json:"discountAmount"`
	Tax           json.Number           `json:"taxAmount"`
	Items         []phorestPurchaseItem `json:"items"`
}

func (p phorestPurchase) ExternalId() string {
	if strings.TrimSpace(p.PurchaseId) != "" {
		return strings.TrimSpace(p.PurchaseId)
	}
	return strings.TrimSpace(p.ID)
}

type phorestPurchaseItem struct {
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Type        string      `json:"type"`
	ProductId   string      `json:"productId"`
	Quantity    json.Number `json:"quantity"`
	UnitPrice   json.Number `json:"unitPrice"`
	Discount    json.Number `json:"discount"`
	Tax         json.Number `json:"tax"`
	TotalAmount json.Number `json:"totalAmount"`
}

// --- small coercion helpers ---

func decimalFromNumber(num json.Number) decimal.Decimal {
	if num.String() == "" {
		return decimal.Zero
	}
	if d, err := decimal.NewFromString(num.String()); err == nil {
		return d
	}
	return decimal.Zero
}

func intFromNumber(num json.Number) int {
	if num.String() == "" {
		return 0
	}
	if n, err := num.Int64(); err == nil {
		return int(n)
	}
	if d, err := decimal.NewFromString(num.String()); err == nil {
		return int(d.IntPart())
	}
	return 0
}

// parseTimestamp accepts RFC3339 or bare-date values; nil when unparseable.
func parseTimestamp(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		t = t.UTC()
		return &t
	}
	if t, err := time.ParseInLocation("2006-01-02", value, time.UTC); err == nil {
		return &t
	}
	return nil
}

func parseDateOr(value string, fallback time.Time) time.Time {
	if t := parseTimestamp(value); t != nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	return fallback
}
