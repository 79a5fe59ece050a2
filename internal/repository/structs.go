package repository

import (
	"errors"
	"time"
)

var ErrObjectNotFound = errors.New("not found")

type Variant struct {
	ID         string    `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	Stock      int       `db:"stock" json:"stock"`
	OutOfStock bool      `db:"out_of_stock" json:"out_of_stock"`
	Price      int       `db:"price" json:"price"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

type Order struct {
	ID             string    `db:"id" json:"id"`
	CustomerID     string    `db:"customer_id" json:"customer_id"`
	Status         string    `db:"status" json:"status"`
	RecipientName  string    `db:"recipient_name" json:"recipient_name"`
	AddressLine    string    `db:"address_line" json:"address_line"`
	City           string    `db:"city" json:"city"`
	Phone          string    `db:"phone" json:"phone"`
	Email          string    `db:"email" json:"email"`
	DeliveryMethod string    `db:"delivery_method" json:"delivery_method"`
	TotalPrice     int       `db:"total_price" json:"total_price"`
	TrackingCode   *string   `db:"tracking_code" json:"tracking_code,omitempty"`
	CancelReason   *string   `db:"cancel_reason" json:"cancel_reason,omitempty"`
	StockApplied   bool      `db:"stock_applied" json:"stock_applied"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

type OrderItem struct {
	ID        int64   `db:"id" json:"id"`
	OrderID   string  `db:"order_id" json:"order_id"`
	VariantID *string `db:"variant_id" json:"variant_id,omitempty"`
	Title     string  `db:"title" json:"title"`
	Qty       int     `db:"qty" json:"qty"`
	Price     int     `db:"price" json:"price"`
}

type HistoryEntry struct {
	ID        int64     `db:"id" json:"id"`
	OrderID   string    `db:"order_id" json:"order_id"`
	Status    string    `db:"status" json:"status"`
	Actor     string    `db:"actor" json:"actor"`
	Reason    string    `db:"reason" json:"reason"`
	ChangedAt time.Time `db:"changed_at" json:"changed_at"`
}

type Shipment struct {
	ID                string     `db:"id" json:"id"`
	OrderID           string     `db:"order_id" json:"order_id"`
	ConsignmentNo     *string    `db:"consignment_no" json:"consignment_no,omitempty"`
	Status            string     `db:"status" json:"status"`
	PickupStatus      *string    `db:"pickup_status" json:"pickup_status,omitempty"`
	PaymentStatus     *string    `db:"payment_status" json:"payment_status,omitempty"`
	Weight            float32    `db:"weight" json:"weight"`
	Pieces            int        `db:"pieces" json:"pieces"`
	CODAmount         int        `db:"cod_amount" json:"cod_amount"`
	OriginCity        string     `db:"origin_city" json:"origin_city"`
	DestinationCity   string     `db:"destination_city" json:"destination_city"`
	Fragile           bool       `db:"fragile" json:"fragile"`
	InsuranceValue    int        `db:"insurance_value" json:"insurance_value"`
	Remarks           string     `db:"remarks" json:"remarks,omitempty"`
	LastAPICall       *time.Time `db:"last_api_call" json:"last_api_call,omitempty"`
	EstimatedDelivery *time.Time `db:"estimated_delivery" json:"estimated_delivery,omitempty"`
	ActualDelivery    *time.Time `db:"actual_delivery" json:"actual_delivery,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

type TrackingEvent struct {
	ID          int64     `db:"id" json:"id"`
	ShipmentID  string    `db:"shipment_id" json:"shipment_id"`
	Status      string    `db:"status" json:"status"`
	Location    string    `db:"location" json:"location,omitempty"`
	Description string    `db:"description" json:"description,omitempty"`
	UpdatedBy   string    `db:"updated_by" json:"updated_by"`
	OccurredAt  time.Time `db:"occurred_at" json:"occurred_at"`
}

type ShipmentError struct {
	ID         int64     `db:"id" json:"id"`
	ShipmentID string    `db:"shipment_id" json:"shipment_id"`
	Message    string    `db:"message" json:"message"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
