// Package validation rejects malformed input before it reaches a service.
//
// Request structs are checked with tags through Validate; field names in
// the resulting error come from the json tags, with nested paths such as
// "fullName.firstName" or "addresses[0].pincode". Inputs that do not come
// from a JSON body, such as multipart forms and query strings, use the
// programmatic Validator:
//
//	v := validation.New()
//	v.Required("title", title).OneOf("priceCurrency", currency, []string{"INR", "USD"})
//	if err := v.Validate(); err != nil { ... }
package validation
