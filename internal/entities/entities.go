package entities

import (
	"fmt"
	"time"
)

// ValidationError reports a missing required field in an inbound payload.
// Router boundaries map it to a client-error status.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q is required", e.Field)
}

// Timestamp renders t as the ISO-8601 UTC string stored in documents.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.999999Z07:00")
}

type requiredField struct {
	name string
	set  bool
}

// firstMissing returns a ValidationError for the first absent required field.
// Required strings may be empty but must be present, hence the pointer checks
// at the call sites.
func firstMissing(fields []requiredField) error {
	for _, f := range fields {
		if !f.set {
			return &ValidationError{Field: f.name}
		}
	}
	return nil
}

// Store is a local business listed in the hub directory.
type Store struct {
	ID          string  `json:"id,omitempty" bson:"id,omitempty"`
	Name        *string `json:"name" bson:"name"`
	Category    *string `json:"category" bson:"category"`
	Phone       *string `json:"phone" bson:"phone"`
	Whatsapp    *string `json:"whatsapp" bson:"whatsapp"`
	Logo        *string `json:"logo" bson:"logo"`
	Rating      float64 `json:"rating" bson:"rating"`
	Description *string `json:"description" bson:"description"`
	CreatedAt   string  `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}

func (s *Store) Validate() error {
	return firstMissing([]requiredField{
		{"name", s.Name != nil},
		{"category", s.Category != nil},
		{"phone", s.Phone != nil},
		{"whatsapp", s.Whatsapp != nil},
	})
}

func (s *Store) SetID(id string)            { s.ID = id }
func (s *Store) StampCreated(now time.Time) { s.CreatedAt = Timestamp(now) }

// Product belongs to a store via StoreID. The reference is a plain string and
// is not checked against the stores collection.
type Product struct {
	ID          string   `json:"id,omitempty" bson:"id,omitempty"`
	StoreID     *string  `json:"storeId" bson:"storeId"`
	Name        *string  `json:"name" bson:"name"`
	Price       *float64 `json:"price" bson:"price"`
	Category    *string  `json:"category" bson:"category"`
	Image       *string  `json:"image" bson:"image"`
	Description *string  `json:"description" bson:"description"`
	CreatedAt   string   `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}

func (p *Product) Validate() error {
	return firstMissing([]requiredField{
		{"storeId", p.StoreID != nil},
		{"name", p.Name != nil},
		{"price", p.Price != nil},
		{"category", p.Category != nil},
	})
}

func (p *Product) SetID(id string)            { p.ID = id }
func (p *Product) StampCreated(now time.Time) { p.CreatedAt = Timestamp(now) }

// News is a community announcement. Date is server-stamped alongside
// CreatedAt, never taken from the payload.
type News struct {
	ID        string  `json:"id,omitempty" bson:"id,omitempty"`
	Title     *string `json:"title" bson:"title"`
	Category  *string `json:"category" bson:"category"`
	Content   *string `json:"content" bson:"content"`
	Date      *string `json:"date" bson:"date"`
	Image     *string `json:"image" bson:"image"`
	CreatedAt string  `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}

func (n *News) Validate() error {
	return firstMissing([]requiredField{
		{"title", n.Title != nil},
		{"category", n.Category != nil},
		{"content", n.Content != nil},
	})
}

func (n *News) SetID(id string) { n.ID = id }

func (n *News) StampCreated(now time.Time) {
	ts := Timestamp(now)
	n.Date = &ts
	n.CreatedAt = ts
}

// Professional is a service provider listed in the hub.
type Professional struct {
	ID        string  `json:"id,omitempty" bson:"id,omitempty"`
	Name      *string `json:"name" bson:"name"`
	Service   *string `json:"service" bson:"service"`
	Phone     *string `json:"phone" bson:"phone"`
	Whatsapp  *string `json:"whatsapp" bson:"whatsapp"`
	Photo     *string `json:"photo" bson:"photo"`
	Specialty *string `json:"specialty" bson:"specialty"`
	CreatedAt string  `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}

func (p *Professional) Validate() error {
	return firstMissing([]requiredField{
		{"name", p.Name != nil},
		{"service", p.Service != nil},
		{"phone", p.Phone != nil},
		{"whatsapp", p.Whatsapp != nil},
	})
}

func (p *Professional) SetID(id string)            { p.ID = id }
func (p *Professional) StampCreated(now time.Time) { p.CreatedAt = Timestamp(now) }

// Trip is a scheduled transport run. Listings order by Time ascending, not by
// creation order.
type Trip struct {
	ID          string   `json:"id,omitempty" bson:"id,omitempty"`
	Time        *string  `json:"time" bson:"time"`
	Price       *float64 `json:"price" bson:"price"`
	Route       *string  `json:"route" bson:"route"`
	DriverName  *string  `json:"driverName" bson:"driverName"`
	DriverPhone *string  `json:"driverPhone" bson:"driverPhone"`
	CreatedAt   string   `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}

func (t *Trip) Validate() error {
	return firstMissing([]requiredField{
		{"time", t.Time != nil},
		{"price", t.Price != nil},
		{"route", t.Route != nil},
		{"driverName", t.DriverName != nil},
		{"driverPhone", t.DriverPhone != nil},
	})
}

func (t *Trip) SetID(id string)            { t.ID = id }
func (t *Trip) StampCreated(now time.Time) { t.CreatedAt = Timestamp(now) }
