// Package service contains the account and catalog use cases: registration
// and login, user profiles and balances, and book listings.
//
// Services coordinate the stores in internal/store and apply the rules that
// span more than one record, such as "only the owner or an admin may edit a
// book" or "an admin may not delete themselves". Writes that read before
// they write run inside store.RunInTransaction.
//
// The trade workflow lives in the service/trade subpackage and JWT and
// password handling in service/auth.
package service
