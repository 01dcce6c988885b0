package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUserType(t *testing.T) {
	cases := map[string]string{
		"retailer":   "retailers",
		"wholesaler": "wholesalers",
		"lineWorker": "lineWorkers",
		"admin":      "users",
	}
	for in, collection := range cases {
		ut, err := ParseUserType(in)
		assert.NoError(t, err)
		assert.Equal(t, collection, ut.CollectionName())
	}

	_, err := ParseUserType("Retailer")
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = ParseUserType("")
	assert.ErrorIs(t, err, ErrInvalid)
}
