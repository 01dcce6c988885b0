package model

import "fmt"

// UserType is the closed set of account kinds. Each kind lives in its own
// Firestore collection; keeping the mapping here means a typo in a caller is
// a compile error, not a query against a collection that never existed.
type UserType string

const (
	UserTypeRetailer   UserType = "retailer"
	UserTypeWholesaler UserType = "wholesaler"
	UserTypeLineWorker UserType = "lineWorker"
	UserTypeAdmin      UserType = "admin"
)

func (t UserType) CollectionName() string {
	switch t {
	case UserTypeRetailer:
		return "retailers"
	case UserTypeWholesaler:
		return "wholesalers"
	case UserTypeLineWorker:
		return "lineWorkers"
	case UserTypeAdmin:
		return "users"
	}
	return ""
}

func (t UserType) Valid() bool {
	return t.CollectionName() != ""
}

func ParseUserType(s string) (UserType, error) {
	t := UserType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown user type %q: %w", s, ErrInvalid)
	}
	return t, nil
}
