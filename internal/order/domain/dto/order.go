package dto

import (
	"wildcats-food-express/internal/order/domain/models"
)

type PlaceOrderRequest struct {
	UserName      string            `json:"userName"`
	StudentNumber string            `json:"studentNumber"`
	MenusOrdered  []models.LineItem `json:"menusOrdered"`
	TotalPrice    float64           `json:"totalPrice"`
}

type OrderResponse struct {
	Message string        `json:"message"`
	Order   *models.Order `json:"order,omitempty"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type PaymentProof struct {
	OrderID         string
	ReceiptPath     string
	ReferenceNumber string
	AmountSent      float64
}

type MenuItemRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image"`
}

type AdjustRequest struct {
	QuantityChange int `json:"quantityChange"`
}

type QuantityResponse struct {
	Quantity int `json:"quantity"`
}

type ClientOrderRequest struct {
	SchoolID       string                   `json:"schoolId"`
	Items          []models.ClientOrderItem `json:"items"`
	Status         string                   `json:"status"`
	PriorityNumber int                      `json:"priorityNumber"`
	TotalPrice     *float64                 `json:"totalPrice"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
