package utils

import (
	"regexp"
	"strings"

	"rentflow/internal/domain"
)

const DefaultCountry = "India"

// A 6 digit PIN code wins over a 5 digit ZIP anywhere in the address, so a
// house number is not mistaken for the postal code.
var postalCodePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{6}\b`),
	regexp.MustCompile(`\b\d{5}\b`),
}

// ParseAddress splits a free-text "street, city, state, pincode" address into
// its parts, defaulting the country to DefaultCountry.
func ParseAddress(text string) domain.Address {
	return ParseAddressWithCountry(text, DefaultCountry)
}

// ParseAddressWithCountry is a best-effort parser: the first PIN code found
// (or failing that the first ZIP code) becomes the pincode, the last
// remaining segment is the state, the one before it the city and everything
// earlier the street.
func ParseAddressWithCountry(text, country string) domain.Address {
	addr := domain.Address{Country: country}

	var parts []string
	for _, p := range strings.Split(text, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	parts = extractPincode(&addr, parts)

	switch n := len(parts); {
	case n >= 3:
		addr.State = parts[n-1]
		addr.City = parts[n-2]
		addr.Street = strings.Join(parts[:n-2], ", ")
	case n == 2:
		addr.City = parts[0]
		addr.State = parts[1]
	case n == 1:
		addr.Street = parts[0]
	}
	return addr
}

func extractPincode(addr *domain.Address, parts []string) []string {
	for _, pattern := range postalCodePatterns {
		for i, part := range parts {
			loc := pattern.FindStringIndex(part)
			if loc == nil {
				continue
			}
			addr.Pincode = part[loc[0]:loc[1]]
			rest := strings.TrimSpace(part[:loc[0]] + part[loc[1]:])
			if rest == "" {
				return append(parts[:i], parts[i+1:]...)
			}
			parts[i] = strings.Join(strings.Fields(rest), " ")
			return parts
		}
	}
	return parts
}
