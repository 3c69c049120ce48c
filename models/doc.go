// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON. Each has a Validate method backed by
go-playground/validator; handlers answer 400 when it fails.

  - CreatePetitionRequest: title, description, categoryId, supportTiers
  - SupportTierRequest: title, description, cost
  - EditPetitionRequest: optional title, description, categoryId
  - EditSupportTierRequest: optional title, description, cost
  - AddSupporterRequest: supportTierId, optional message
  - RegisterRequest: firstName, lastName, email, password
  - LoginRequest: email, password
  - EditUserRequest: optional fields; password requires currentPassword

Validation covers shape only. Rules that need the database (title
uniqueness, tier counts, ownership) belong to package guard.

# Response Types

  - SearchResponse: petitions, count (total before pagination)
  - CreatePetitionResponse: petitionId
  - RegisterResponse: userId
  - LoginResponse: userId, token
  - UserView: firstName, lastName, email (self only)
  - ErrorResponse: error, message

# Domain Types

  - Category: read-only reference data
  - PetitionSummary: a search row; supportingCost is the cheapest tier
  - PetitionDetail: summary plus description, tiers and aggregates
  - SupportTier: title, description, cost
  - Supporter: a pledge joined with the supporter's name
  - User: account row; password hash and session token never serialize
*/
package models
