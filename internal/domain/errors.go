package domain

import "errors"

var (
	// ErrNoProvidersConfigured is returned when no content-storage provider has complete credentials
	ErrNoProvidersConfigured = errors.New("no content-storage providers configured")

	// ErrAllProvidersExhausted is returned when every enabled provider failed all its retries
	ErrAllProvidersExhausted = errors.New("all content-storage providers exhausted")

	// ErrConnectionLost is returned when the live tail's resubscription budget is exhausted
	ErrConnectionLost = errors.New("chain connection lost")

	// ErrStoryAlreadyExists is returned when attempting to record a story that already exists
	ErrStoryAlreadyExists = errors.New("story already exists")

	// ErrStoryNotFound is returned when a story is not found
	ErrStoryNotFound = errors.New("story not found")

	// ErrListingNotActive is returned when a status transition requires an active listing
	ErrListingNotActive = errors.New("listing is not active")

	// ErrListingAlreadyExists is returned when submitting a listing whose identifier is taken
	ErrListingAlreadyExists = errors.New("listing already exists")

	// ErrNotCurrentOwner is returned when a seller submits a record for a token they do not own
	ErrNotCurrentOwner = errors.New("seller is not the current owner")

	// ErrOfferNotPending is returned when accepting or rejecting an offer that is not pending
	ErrOfferNotPending = errors.New("offer is not pending")
)
