// Package catalog holds the mock platform data the list screens read and the
// search and filter configuration of each screen.
package catalog

import (
	"fmt"
	"strconv"
	"time"

	"github.com/example/foodhub/internal/listing"
)

type Restaurant struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Cuisine string  `json:"cuisine"`
	Phone   string  `json:"phone"`
	Status  string  `json:"status"`
	Rating  float64 `json:"rating"`
	Zone    string  `json:"zone"`
}

type Order struct {
	ID            string    `json:"id"`
	Customer      string    `json:"customer"`
	RestaurantID  string    `json:"restaurant_id"`
	Restaurant    string    `json:"restaurant"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"payment_method"`
	Total         float64   `json:"total"`
	PlacedAt      time.Time `json:"placed_at"`
}

type DeliveryPartner struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Email   string  `json:"email"`
	Status  string  `json:"status"`
	Vehicle string  `json:"vehicle"`
	Zone    string  `json:"zone"`
	Rating  float64 `json:"rating"`
}

type Customer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Email  string `json:"email"`
	Status string `json:"status"`
	Orders int    `json:"orders"`
}

// Catalog is a read-only snapshot of the mock data.
type Catalog struct {
	Restaurants []Restaurant
	Orders      []Order
	Partners    []DeliveryPartner
	Customers   []Customer
}

// OrdersFor returns the orders placed with one restaurant.
func (c *Catalog) OrdersFor(restaurantID string) []Order {
	out := make([]Order, 0)
	for _, o := range c.Orders {
		if o.RestaurantID == restaurantID {
			out = append(out, o)
		}
	}
	return out
}

// RestaurantByPhone finds the restaurant a partner signed in for.
func (c *Catalog) RestaurantByPhone(phone string) (Restaurant, bool) {
	for _, r := range c.Restaurants {
		if r.Phone == phone {
			return r, true
		}
	}
	return Restaurant{}, false
}

var (
	RestaurantList = listing.Definition[Restaurant]{
		Search: []listing.Field[Restaurant]{
			func(r Restaurant) string { return r.Name },
			func(r Restaurant) string { return r.ID },
			func(r Restaurant) string { return r.Cuisine },
			func(r Restaurant) string { return r.Phone },
		},
		Filters: []listing.Filter[Restaurant]{
			listing.Equals("status", func(r Restaurant) string { return r.Status }),
			listing.Equals("cuisine", func(r Restaurant) string { return r.Cuisine }),
			listing.Range("rating", func(r Restaurant) float64 { return r.Rating }),
		},
	}

	OrderList = listing.Definition[Order]{
		Search: []listing.Field[Order]{
			func(o Order) string { return o.ID },
			func(o Order) string { return o.Customer },
			func(o Order) string { return o.Restaurant },
		},
		Filters: []listing.Filter[Order]{
			listing.Equals("status", func(o Order) string { return o.Status }),
			listing.Equals("payment_method", func(o Order) string { return o.PaymentMethod }),
			listing.Range("total", func(o Order) float64 { return o.Total }),
			listing.Equals("restaurant_id", func(o Order) string { return o.RestaurantID }),
		},
	}

	PartnerList = listing.Definition[DeliveryPartner]{
		Search: []listing.Field[DeliveryPartner]{
			func(p DeliveryPartner) string { return p.Name },
			func(p DeliveryPartner) string { return p.ID },
			func(p DeliveryPartner) string { return p.Phone },
			func(p DeliveryPartner) string { return p.Email },
		},
		Filters: []listing.Filter[DeliveryPartner]{
			listing.Equals("status", func(p DeliveryPartner) string { return p.Status }),
			listing.Equals("vehicle", func(p DeliveryPartner) string { return p.Vehicle }),
			listing.Equals("zone", func(p DeliveryPartner) string { return p.Zone }),
		},
	}

	CustomerList = listing.Definition[Customer]{
		Search: []listing.Field[Customer]{
			func(c Customer) string { return c.Name },
			func(c Customer) string { return c.ID },
			func(c Customer) string { return c.Phone },
			func(c Customer) string { return c.Email },
		},
		Filters: []listing.Filter[Customer]{
			listing.Equals("status", func(c Customer) string { return c.Status }),
		},
	}
)

// Seed builds the mock data set. Orders are placed relative to now.
func Seed(now time.Time) *Catalog {
	restaurants := []Restaurant{
		{"REST001", "Spice Garden", "Indian", "+1 5550100001", "active", 4.6, "Downtown"},
		{"REST002", "Pasta Palace", "Italian", "+1 5550100002", "active", 4.3, "Midtown"},
		{"REST003", "Dragon Wok", "Chinese", "+1 5550100003", "active", 4.1, "Downtown"},
		{"REST004", "Taco Fiesta", "Mexican", "+1 5550100004", "pending", 3.8, "Eastside"},
		{"REST005", "Sushi Zen", "Japanese", "+1 5550100005", "active", 4.8, "Midtown"},
		{"REST006", "Burger Barn", "American", "+1 5550100006", "suspended", 3.2, "Westside"},
		{"REST007", "Green Bowl", "Healthy", "+1 5550100007", "active", 4.4, "Eastside"},
		{"REST008", "Curry House", "Indian", "+1 5550100008", "inactive", 3.9, "Westside"},
		{"REST009", "Pho Corner", "Vietnamese", "+1 5550100009", "active", 4.2, "Downtown"},
		{"REST010", "Le Bistro", "French", "+1 5550100010", "pending", 4.0, "Midtown"},
		{"REST011", "Kebab King", "Turkish", "+1 5550100011", "active", 4.5, "Eastside"},
		{"REST012", "Pizza Piazza", "Italian", "+1 5550100012", "active", 3.6, "Westside"},
	}

	customers := []Customer{
		{"CUST001", "Jane Cooper", "+1 5550200001", "jane.cooper@example.com", "active", 0},
		{"CUST002", "Jon Snow", "+1 5550200002", "jon.snow@example.com", "active", 0},
		{"CUST003", "Priya Sharma", "+91 9876500003", "priya.sharma@example.com", "active", 0},
		{"CUST004", "Wade Warren", "+1 5550200004", "wade.warren@example.com", "blocked", 0},
		{"CUST005", "Esther Howard", "+1 5550200005", "esther.howard@example.com", "active", 0},
		{"CUST006", "Cameron Williamson", "+44 7700900006", "cameron.w@example.com", "inactive", 0},
		{"CUST007", "Brooklyn Simmons", "+1 5550200007", "brooklyn.s@example.com", "active", 0},
		{"CUST008", "Leslie Alexander", "+1 5550200008", "leslie.a@example.com", "active", 0},
		{"CUST009", "Guy Hawkins", "+1 5550200009", "guy.hawkins@example.com", "blocked", 0},
		{"CUST010", "Kristin Watson", "+1 5550200010", "kristin.w@example.com", "active", 0},
	}

	partners := []DeliveryPartner{
		{"DP001", "Rahul Verma", "+1 5550300001", "rahul.v@example.com", "online", "bike", "Downtown", 4.7},
		{"DP002", "Maria Garcia", "+1 5550300002", "maria.g@example.com", "offline", "scooter", "Midtown", 4.5},
		{"DP003", "Ahmed Khan", "+1 5550300003", "ahmed.k@example.com", "on_delivery", "bike", "Eastside", 4.8},
		{"DP004", "Lucy Chen", "+1 5550300004", "lucy.c@example.com", "online", "car", "Westside", 4.2},
		{"DP005", "Tom Becker", "+1 5550300005", "tom.b@example.com", "suspended", "bicycle", "Downtown", 3.4},
		{"DP006", "Sofia Rossi", "+1 5550300006", "sofia.r@example.com", "online", "scooter", "Eastside", 4.6},
		{"DP007", "Kwame Mensah", "+1 5550300007", "kwame.m@example.com", "on_delivery", "bike", "Midtown", 4.4},
		{"DP008", "Nina Petrova", "+1 5550300008", "nina.p@example.com", "offline", "car", "Downtown", 4.1},
	}

	statuses := []string{"pending", "preparing", "ready", "out_for_delivery", "delivered", "delivered", "cancelled"}
	payments := []string{"card", "cash", "wallet", "upi"}

	orders := make([]Order, 0, 40)
	for i := 0; i < 40; i++ {
		r := restaurants[(i*5)%len(restaurants)]
		c := &customers[(i*3)%len(customers)]
		c.Orders++
		orders = append(orders, Order{
			ID:            "ORD" + strconv.Itoa(1001+i),
			Customer:      c.Name,
			RestaurantID:  r.ID,
			Restaurant:    r.Name,
			Status:        statuses[i%len(statuses)],
			PaymentMethod: payments[(i/2)%len(payments)],
			Total:         roundCents(12.5 + float64((i*37)%90) + float64(i%4)*0.25),
			PlacedAt:      now.Add(-time.Duration(i*47) * time.Minute).UTC(),
		})
	}

	return &Catalog{
		Restaurants: restaurants,
		Orders:      orders,
		Partners:    partners,
		Customers:   customers,
	}
}

func roundCents(v float64) float64 {
	f, _ := strconv.ParseFloat(fmt.Sprintf("%.2f", v), 64)
	return f
}
