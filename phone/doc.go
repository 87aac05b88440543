// Package phone validates Indonesian mobile numbers and reports the operator
// that owns the number's prefix.
//
// Numbers are accepted in local (08xx), international (628xx) or E.164
// (+628xx) form. The validator never rewrites the caller's string; the
// normalized form is only used for lookups.
//
// Parsing and the mobile/landline decision come from libphonenumber
// (github.com/nyaruka/phonenumbers). A small prefix table adds the card
// product and the operator name used in audit records; numbers outside the
// table fall back to libphonenumber's carrier data.
package phone
