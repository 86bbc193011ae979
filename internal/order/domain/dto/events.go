package dto

import (
	"wildcats-food-express/internal/order/domain/models"
)

const (
	EventNewOrder          = "newOrder"
	EventOrderStatusUpdate = "orderStatusUpdate"
)

// Event is what observers receive; Data is an *models.Order for newOrder and
// a StatusChange for orderStatusUpdate.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

type StatusChange struct {
	OrderID       string        `json:"_id"`
	StudentNumber string        `json:"studentNumber"`
	Status        models.Status `json:"status"`
	UserID        string        `json:"userId"`
}

// Key is used for partitioning on the event stream.
func (e Event) Key() string {
	switch d := e.Data.(type) {
	case *models.Order:
		return d.ID
	case models.Order:
		return d.ID
	case StatusChange:
		return d.OrderID
	}
	return ""
}

func NewOrderEvent(o models.Order) Event {
	return Event{Name: EventNewOrder, Data: &o}
}

func StatusChangeEvent(o models.Order) Event {
	return Event{
		Name: EventOrderStatusUpdate,
		Data: StatusChange{
			OrderID:       o.ID,
			StudentNumber: o.StudentNumber,
			Status:        o.Status,
			UserID:        o.UserID,
		},
	}
}
