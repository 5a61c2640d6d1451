// Package catalog implements the product catalog service.
//
// Sellers create products with up to MaxImages images, which are sniffed,
// uploaded to object storage in parallel and referenced by URL. Listing
// and lookup are public; changes are limited to the seller who owns the
// product. Sessions are the tokens minted by the account service.
package catalog
