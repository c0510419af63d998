package importer

import "strings"

// Status is the closed set of shipment statuses stored downstream.
type Status string

const (
	StatusPlanning  Status = "planning"
	StatusBooked    Status = "booked"
	StatusLoading   Status = "loading"
	StatusSailed    Status = "sailed"
	StatusArrived   Status = "arrived"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// exactStatuses maps known phrases (lowercased, trimmed) to a status.
var exactStatuses = map[string]Status{
	"planning":         StatusPlanning,
	"planned":          StatusPlanning,
	"pending":          StatusPlanning,
	"not shipped":      StatusPlanning,
	"قيد التخطيط":      StatusPlanning,
	"لم يشحن":          StatusPlanning,
	"بانتظار الشحن":    StatusPlanning,
	"booked":           StatusBooked,
	"booking":          StatusBooked,
	"تم الحجز":         StatusBooked,
	"محجوز":            StatusBooked,
	"loading":          StatusLoading,
	"قيد التحميل":      StatusLoading,
	"sailed":           StatusSailed,
	"shipped":          StatusSailed,
	"on board":         StatusSailed,
	"in transit":       StatusSailed,
	"مبحرة":            StatusSailed,
	"في البحر":         StatusSailed,
	"تم الشحن":         StatusSailed,
	"arrived":          StatusArrived,
	"at port":          StatusArrived,
	"وصلت":             StatusArrived,
	"واصلة":            StatusArrived,
	"في الميناء":       StatusArrived,
	"delivered":        StatusDelivered,
	"received":         StatusDelivered,
	"تم الاستلام":      StatusDelivered,
	"مستلمة":           StatusDelivered,
	"تم التسليم":       StatusDelivered,
	"cancelled":        StatusCancelled,
	"canceled":         StatusCancelled,
	"ملغاة":            StatusCancelled,
	"ملغى":             StatusCancelled,
}

// statusHints are checked in order when no exact phrase matches. Later
// stages come first; "shipment" alone is not a sailing hint.
var statusHints = []struct {
	fragment string
	status   Status
}{
	{"cancel", StatusCancelled},
	{"ملغ", StatusCancelled},
	{"deliver", StatusDelivered},
	{"استلام", StatusDelivered},
	{"تسليم", StatusDelivered},
	{"arriv", StatusArrived},
	{"وصل", StatusArrived},
	{"واصل", StatusArrived},
	{"transit", StatusSailed},
	{"sail", StatusSailed},
	{"shipped", StatusSailed},
	{"on board", StatusSailed},
	{"مبحر", StatusSailed},
	{"بحر", StatusSailed},
	{"الطريق", StatusSailed},
	{"شحن", StatusSailed},
	{"load", StatusLoading},
	{"تحميل", StatusLoading},
	{"book", StatusBooked},
	{"حجز", StatusBooked},
}

// MapStatus maps free-text status to the closed enumeration. Exact phrases
// win, then substring hints; anything else is planning.
func MapStatus(text string) Status {
	s := strings.ToLower(strings.Join(strings.Fields(text), " "))
	if s == "" {
		return StatusPlanning
	}
	if st, ok := exactStatuses[s]; ok {
		return st
	}
	for _, h := range statusHints {
		if strings.Contains(s, h.fragment) {
			return h.status
		}
	}
	return StatusPlanning
}
