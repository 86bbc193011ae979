package models

import "time"

type MenuItem struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type LineItem struct {
	ItemName string  `json:"itemName"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type Order struct {
	ID              string     `json:"_id"`
	UserID          string     `json:"userId"`
	UserName        string     `json:"userName"`
	StudentNumber   string     `json:"studentNumber"`
	MenusOrdered    []LineItem `json:"menusOrdered"`
	TotalPrice      float64    `json:"totalPrice"`
	Status          Status     `json:"status"`
	ReceiptPath     *string    `json:"receiptPath"`
	ReferenceNumber *string    `json:"referenceNumber"`
	AmountSent      *float64   `json:"amountSent"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Clone returns a deep copy; snapshots must not share slices or pointers.
func (o Order) Clone() Order {
	c := o
	c.MenusOrdered = append([]LineItem(nil), o.MenusOrdered...)
	if o.ReceiptPath != nil {
		v := *o.ReceiptPath
		c.ReceiptPath = &v
	}
	if o.ReferenceNumber != nil {
		v := *o.ReferenceNumber
		c.ReferenceNumber = &v
	}
	if o.AmountSent != nil {
		v := *o.AmountSent
		c.AmountSent = &v
	}
	return c
}

// HistoryOrder is the archived snapshot of an order that reached a terminal status.
type HistoryOrder struct {
	Order
	ArchivedAt time.Time `json:"archivedAt"`
}

type ClientOrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// ClientOrder is a walk-up counter order. It does not touch menu stock.
type ClientOrder struct {
	ID             string            `json:"_id"`
	SchoolID       string            `json:"schoolId"`
	Items          []ClientOrderItem `json:"items"`
	Status         Status            `json:"status"`
	PriorityNumber int               `json:"priorityNumber"`
	TotalPrice     float64           `json:"totalPrice"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

func (o ClientOrder) Clone() ClientOrder {
	c := o
	c.Items = append([]ClientOrderItem(nil), o.Items...)
	return c
}
