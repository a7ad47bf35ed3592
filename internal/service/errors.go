package service

import "errors"

var (
	ErrCartNotFound        = errors.New("cart not found")
	ErrCatalogItemNotFound = errors.New("catalog item not found")
	ErrInvalidCartItem     = errors.New("invalid cart item")
	ErrInvalidCatalogItem  = errors.New("invalid catalog item")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrCartFetchFailed     = errors.New("cart fetch failed")
	ErrCartSaveFailed      = errors.New("cart save failed")
	ErrCartDeleteFailed    = errors.New("cart delete failed")
	ErrCatalogFetchFailed  = errors.New("catalog fetch failed")
)
