// Package authflow holds the records passed between the sign-in form, the
// OTP screen and the authenticated area, and the stores that keep them.
package authflow

import (
	"fmt"
	"time"
)

// Role distinguishes the two experiences that sign in with a one-time code.
type Role string

const (
	RoleConsumer          Role = "consumer"
	RoleRestaurantPartner Role = "restaurant_partner"
)

// ParseRole accepts the role names used in routes.
func ParseRole(s string) (Role, error) {
	switch s {
	case "consumer":
		return RoleConsumer, nil
	case "restaurant", "restaurant_partner", "restaurant-partner":
		return RoleRestaurantPartner, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) SignInRoute() string {
	if r == RoleRestaurantPartner {
		return "/restaurant/login"
	}
	return "/login"
}

func (r Role) OTPRoute() string {
	if r == RoleRestaurantPartner {
		return "/restaurant/verify-otp"
	}
	return "/verify-otp"
}

func (r Role) LandingRoute() string {
	if r == RoleRestaurantPartner {
		return "/restaurant/dashboard"
	}
	return "/"
}

// DefaultDisplayName is used when the pending record carries no name.
func (r Role) DefaultDisplayName() string {
	if r == RoleRestaurantPartner {
		return "Restaurant Partner"
	}
	return "Guest"
}

// Method is the channel the code was sent through.
type Method string

const (
	MethodPhone Method = "phone"
	MethodEmail Method = "email"
)

// PendingAuthRecord is written by the sign-in form and consumed once by the
// OTP screen.
type PendingAuthRecord struct {
	Method      Method    `json:"method"`
	Contact     string    `json:"contact"`
	DisplayName string    `json:"display_name,omitempty"`
	IsSignUp    bool      `json:"is_sign_up"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// AuthenticatedSessionRecord exists only after a successful verification.
type AuthenticatedSessionRecord struct {
	ID          string    `json:"id"`
	Contact     string    `json:"contact"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}
