package courier

import "fmt"

// BookingRequest is the carrier's packet-booking payload. Field names follow
// the carrier's wire contract, not our domain model.
type BookingRequest struct {
	Username         string  `json:"username"`
	Password         string  `json:"password"`
	ConsigneeName    string  `json:"consignee_name"`
	ConsigneeAddress string  `json:"consignee_address"`
	ConsigneeMobile  string  `json:"consignee_mobile"`
	ConsigneeEmail   string  `json:"consignee_email"`
	OriginCity       string  `json:"origin_city"`
	DestinationCity  string  `json:"destination_city"`
	Weight           float32 `json:"weight"`
	Pieces           int     `json:"pieces"`
	CODAmount        int     `json:"cod_amount"`
	CustomerRefNo    string  `json:"customer_ref_no"`
	ServiceCode      string  `json:"service_code"`
	ProductDetail    string  `json:"product_detail"`
	Fragile          string  `json:"fragile"`
	Remarks          string  `json:"remarks"`
	InsuranceValue   int     `json:"insurance_value"`
}

type BookingResponse struct {
	Status        int    `json:"status"`
	ConsignmentNo string `json:"consignment_no"`
	Message       string `json:"message,omitempty"`
}

type TrackingRecord struct {
	Status      string `json:"status"`
	Location    string `json:"location"`
	Description string `json:"description"`
	RecordedAt  string `json:"recorded_at"`
}

type TrackResponse struct {
	Status  int              `json:"status"`
	Records []TrackingRecord `json:"records"`
}

type CancelResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
}

type PickupStatusResponse struct {
	Status       int    `json:"status"`
	PickupStatus string `json:"pickup_status"`
}

type PaymentDetailsResponse struct {
	Status          int    `json:"status"`
	PaymentStatus   string `json:"payment_status"`
	CollectedAmount int    `json:"collected_amount"`
}

type City struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type cityListResponse struct {
	Status int    `json:"status"`
	Cities []City `json:"cities"`
}

// Error is returned for every failed gateway call: transport failures,
// non-2xx responses and undecodable or carrier-rejected payloads.
type Error struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("courier %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("courier %s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}
