package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User role constants.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Address is a saved user address.
type Address struct {
	Street    string `json:"street" bson:"street"`
	City      string `json:"city" bson:"city"`
	State     string `json:"state" bson:"state"`
	Pincode   string `json:"pincode" bson:"pincode"`
	Phone     string `json:"phone" bson:"phone"`
	Label     string `json:"label" bson:"label"`
	IsDefault bool   `json:"isDefault" bson:"is_default"`
}

// User is a registered customer account. Password is never serialized to JSON.
type User struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"`
	Phone     string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Role      string             `json:"role" bson:"role"`
	Addresses []Address          `json:"addresses" bson:"addresses"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Pincode  string `json:"pincode,omitempty"`
}

// LoginRequest is the signin payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest carries profile fields a user may change.
type UpdateProfileRequest struct {
	Name      string    `json:"name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Addresses []Address `json:"addresses,omitempty"`
}

// AuthResponse bundles a user with a signed token.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
