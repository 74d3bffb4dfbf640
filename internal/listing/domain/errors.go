package domain

import "errors"

var (
	ErrListingNotFound = errors.New("listing_not_found")
	ErrInvalidListing  = errors.New("invalid_listing")
	ErrQuotaExceeded   = errors.New("listing_quota_exceeded")
	ErrDuplicateSlug   = errors.New("duplicate_slug")
)
