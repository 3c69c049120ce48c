// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"strings"
	"time"

	"github.com/danielhkuo/petitions/auth"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Rejects strings that are empty once surrounding whitespace is removed.
	err := validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	if err != nil {
		panic("models: register notblank: " + err.Error())
	}
}

// Request types

type SupportTierRequest struct {
	Title       string `json:"title" validate:"notblank,max=128"`
	Description string `json:"description" validate:"notblank,max=1024"`
	Cost        *int64 `json:"cost" validate:"required,gte=0"`
}

func (r *SupportTierRequest) Validate() error {
	return validate.Struct(r)
}

// SupportTiers is only checked for presence here; the 1..3 and distinct
// title rules are business decisions made by guard.CanCreateInitialTiers.
type CreatePetitionRequest struct {
	Title        string               `json:"title" validate:"notblank,max=128"`
	Description  string               `json:"description" validate:"notblank,max=1024"`
	CategoryID   int64                `json:"categoryId" validate:"required,gt=0"`
	SupportTiers []SupportTierRequest `json:"supportTiers" validate:"required,dive"`
}

func (r *CreatePetitionRequest) Validate() error {
	return validate.Struct(r)
}

type EditPetitionRequest struct {
	Title       *string `json:"title" validate:"omitnil,notblank,max=128"`
	Description *string `json:"description" validate:"omitnil,notblank,max=1024"`
	CategoryID  *int64  `json:"categoryId" validate:"omitnil,gt=0"`
}

func (r *EditPetitionRequest) Validate() error {
	return validate.Struct(r)
}

type EditSupportTierRequest struct {
	Title       *string `json:"title" validate:"omitnil,notblank,max=128"`
	Description *string `json:"description" validate:"omitnil,notblank,max=1024"`
	Cost        *int64  `json:"cost" validate:"omitnil,gte=0"`
}

func (r *EditSupportTierRequest) Validate() error {
	return validate.Struct(r)
}

type AddSupporterRequest struct {
	SupportTierID int64   `json:"supportTierId" validate:"required,gt=0"`
	Message       *string `json:"message" validate:"omitnil,max=512"`
}

func (r *AddSupporterRequest) Validate() error {
	return validate.Struct(r)
}

type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"notblank,max=64"`
	LastName  string `json:"lastName" validate:"notblank,max=64"`
	Email     string `json:"email" validate:"required,email,max=256"`
	Password  string `json:"password" validate:"required,min=6,max=64"`
}

func (r *RegisterRequest) Validate() error {
	return validate.Struct(r)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=256"`
	Password string `json:"password" validate:"required,max=64"`
}

func (r *LoginRequest) Validate() error {
	return validate.Struct(r)
}

// A new password is only accepted together with the current one.
type EditUserRequest struct {
	FirstName       *string `json:"firstName" validate:"omitnil,notblank,max=64"`
	LastName        *string `json:"lastName" validate:"omitnil,notblank,max=64"`
	Email           *string `json:"email" validate:"omitnil,email,max=256"`
	Password        *string `json:"password" validate:"omitnil,min=6,max=64"`
	CurrentPassword *string `json:"currentPassword" validate:"required_with=Password"`
}

func (r *EditUserRequest) Validate() error {
	return validate.Struct(r)
}

// Response types

type SearchResponse struct {
	Petitions []PetitionSummary `json:"petitions"`
	Count     int               `json:"count"`
}

type CreatePetitionResponse struct {
	PetitionID int64 `json:"petitionId"`
}

type AddSupportTierResponse struct {
	SupportTierID int64 `json:"supportTierId"`
}

type AddSupporterResponse struct {
	SupportID int64 `json:"supportId"`
}

type RegisterResponse struct {
	UserID int64 `json:"userId"`
}

type LoginResponse struct {
	UserID int64  `json:"userId"`
	Token  string `json:"token"`
}

// UserView is the public profile. Email is only included for the user
// themselves.
type UserView struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     *string `json:"email,omitempty"`
}

// Domain types

type Category struct {
	CategoryID int64  `json:"categoryId"`
	Name       string `json:"name"`
}

type PetitionSummary struct {
	PetitionID     int64     `json:"petitionId"`
	Title          string    `json:"title"`
	CategoryID     int64     `json:"categoryId"`
	OwnerID        int64     `json:"ownerId"`
	OwnerFirstName string    `json:"ownerFirstName"`
	OwnerLastName  string    `json:"ownerLastName"`
	CreationDate   time.Time `json:"creationDate"`
	SupportingCost int64     `json:"supportingCost"` // cheapest tier
}

type SupportTier struct {
	SupportTierID int64  `json:"supportTierId"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Cost          int64  `json:"cost"`
}

type PetitionDetail struct {
	PetitionSummary
	Description        string        `json:"description"`
	NumberOfSupporters int64         `json:"numberOfSupporters"`
	MoneyRaised        int64         `json:"moneyRaised"`
	SupportTiers       []SupportTier `json:"supportTiers"`
	ImageFilename      *string       `json:"-"`
}

type Supporter struct {
	SupportID          int64     `json:"supportId"`
	SupportTierID      int64     `json:"supportTierId"`
	Message            *string   `json:"message"`
	SupporterID        int64     `json:"supporterId"`
	SupporterFirstName string    `json:"supporterFirstName"`
	SupporterLastName  string    `json:"supporterLastName"`
	Timestamp          time.Time `json:"timestamp"`
}

type User struct {
	ID            int64             `json:"id"`
	Email         string            `json:"email"`
	FirstName     string            `json:"firstName"`
	LastName      string            `json:"lastName"`
	ImageFilename *string           `json:"-"`
	PasswordHash  string            `json:"-"` // Never expose in JSON
	AuthToken     auth.SessionToken `json:"-"` // Never expose in JSON
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
